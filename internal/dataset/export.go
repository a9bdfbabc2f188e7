package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// ErrUnknownFormat indicates an export format other than json, jsonl or csv
var ErrUnknownFormat = errors.New("Invalid format. Use json, jsonl, or csv")

// ParseFormat converts a query value to a Format. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatJSONL, FormatCSV:
		return Format(s), nil
	}
	return "", ErrUnknownFormat
}

// ContentType is the HTTP content type for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// JSONLEnvelope wraps JSON-lines exports.
type JSONLEnvelope struct {
	Data string `json:"data"`
}

// Encode renders d in the given format.
func Encode(d *Dataset, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(d, "", "  ")
	case FormatJSONL:
		line, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("marshal dataset: %w", err)
		}
		return json.Marshal(JSONLEnvelope{Data: string(line)})
	case FormatCSV:
		return encodeCSV(d)
	}
	return nil, ErrUnknownFormat
}

var csvHeader = []string{"session_id", "step_id", "step_number", "step_content", "rating", "reason", "feedback_quality"}

// encodeCSV writes one row per feedback item.
func encodeCSV(d *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, it := range d.Items() {
		reason := ""
		if it.Reason != nil {
			reason = *it.Reason
		}
		row := []string{
			d.SessionID,
			it.StepID,
			strconv.Itoa(it.StepNumber),
			it.StepContent,
			string(it.Rating),
			reason,
			it.FeedbackQuality,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
