package sheet

// Options controls how a table is read.
type Options struct {
	// Name is the table name; the file name is used when empty.
	Name string `mapstructure:"name"`
	// Sheet selects a worksheet; the first sheet is used when empty. Ignored for CSV.
	Sheet string `mapstructure:"sheet"`
	// SkipRows drops leading rows before the header.
	SkipRows int `mapstructure:"skip_rows"`
	// HeaderRows is 1 or 2.
	HeaderRows int `mapstructure:"header_rows"`
}

func (o Options) headerRows() int {
	if o.HeaderRows == 2 {
		return 2
	}
	return 1
}
