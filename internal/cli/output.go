package cli

import (
	"encoding/json"
	"fmt"
	"io"

	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var ValidFormats = []string{FormatText, FormatJSON}

// Response is the JSON output shape of every command.
type Response struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter renders results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success writes data as JSON, or calls text for the text format.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == FormatJSON {
		return f.writeJSON(Response{Status: "ok", Data: data})
	}
	if text != nil {
		text(f.Writer)
	}
	return nil
}

// Failure renders err. API errors keep their code.
func (f *OutputFormatter) Failure(err error) error {
	code := string(pkgerrors.CodeInternal)
	message := err.Error()
	var details any
	if typed := pkgerrors.As(err); typed != nil {
		code = string(typed.Code())
		if m := typed.Message(); m != "" {
			message = m
		}
		details = typed.Details()
	}
	if f.Format == FormatJSON {
		return f.writeJSON(Response{Status: "error", Error: &CLIError{Code: code, Message: message, Details: details}})
	}
	_, werr := fmt.Fprintf(f.Writer, "error: %s (%s)\n", message, code)
	return werr
}

func (f *OutputFormatter) writeJSON(resp Response) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func isValidFormat(format string) bool {
	for _, candidate := range ValidFormats {
		if candidate == format {
			return true
		}
	}
	return false
}
