// Package output renders command results with pterm.
package output

import (
	"errors"
	"sort"

	"github.com/pterm/pterm"

	"github.com/edugrid/portal/pkg/sdk"
)

// Table renders rows, the first of which is the header. With no data rows
// it prints empty instead.
func Table(empty string, rows pterm.TableData) error {
	if len(rows) <= 1 {
		pterm.Info.Println(empty)
		return nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

// FieldErrors prints the per-field messages of a validation failure, in
// field order, and returns err unchanged.
func FieldErrors(err error) error {
	var verr *sdk.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		pterm.Error.Printf("%s: %s\n", f, verr.Fields[f])
	}
	return err
}
