package outfmt

import (
	"fmt"
	"io"
	"reflect"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes rows, a slice of structs with csv tags, with a header line.
func WriteCSV(w io.Writer, rows any) error {
	rv := reflect.ValueOf(rows)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice {
		return fmt.Errorf("csv output needs a list, got %T", rows)
	}
	return gocsv.Marshal(rows, w)
}
