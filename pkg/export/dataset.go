package export

import "fmt"

// Dataset defines tabular export content.
type Dataset struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     []map[string]string
}

func (d Dataset) validate(format string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", format)
	}
	return nil
}

// record returns the row values in header order.
func (d Dataset) record(row map[string]string) []string {
	values := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		values[i] = row[header]
	}
	return values
}
