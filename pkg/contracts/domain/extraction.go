package domain

// Element categories produced by upstream layout analysis. Only table
// elements carry markup the extraction pipeline can consume.
const (
	CategoryTable   = "Table"
	CategoryTitle   = "Title"
	CategoryText    = "Text"
	CategoryPicture = "Picture"
	CategoryFormula = "Formula"
)

// Element is one layout element from a parsed page: a bounding box, a
// category label, and the element text. For table elements the text holds
// table markup.
type Element struct {
	BBox     []float64 `json:"bbox,omitempty"`
	Category string    `json:"category" validate:"required"`
	Text     string    `json:"text"`
}

// SheetTable is the rendered table markup for one workbook sheet. Sheets
// with no content are never rendered, so every SheetTable carries markup.
type SheetTable struct {
	Name   string `json:"sheet_name"`
	Markup string `json:"markup"`
}

// ParsedTable is the rectangular grid recovered from table markup. The
// first markup row becomes Headers; every row in Rows has exactly
// len(Headers) cells. Duplicate header labels are kept as-is.
type ParsedTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// FieldBinding ties one table column to a canonical schema field. Path is
// a dotted field path such as "price.value"; a column that matched no
// mapping entry keeps its header verbatim as the path.
type FieldBinding struct {
	Header string `json:"header"`
	Path   string `json:"path"`
}

// ResolvedFieldMap holds one binding per table column, in column order.
// Duplicate headers keep their own positions.
type ResolvedFieldMap []FieldBinding

// StructuredRow is one materialized table row: canonical field paths
// expanded into nested maps, values coerced to their natural types.
type StructuredRow map[string]any

// TableResult is the outcome for one table element. A table whose markup
// could not be parsed is degraded: empty Headers and Rows with the
// original markup preserved in RawMarkup.
type TableResult struct {
	TableIndex int             `json:"table_index"`
	Headers    []string        `json:"headers"`
	Rows       []StructuredRow `json:"rows"`
	RawMarkup  string          `json:"raw_markup"`
}

// ExtractionResult is the outcome of running the pipeline over one
// element batch. DegradedCount is the number of table elements whose
// markup failed to parse; those tables still appear in Tables.
type ExtractionResult struct {
	Tables        []TableResult `json:"tables"`
	DegradedCount int           `json:"degraded_count"`
}

// PageResult groups the tables extracted from one page or one workbook
// sheet. SheetName is empty for non-workbook inputs.
type PageResult struct {
	Page      int            `json:"page"`
	SheetName string         `json:"sheet_name,omitempty"`
	Tables    []TableResult  `json:"tables"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ParseReport is the file-level extraction outcome: one page entry per
// workbook sheet or element page, plus run bookkeeping. DegradedTables
// counts tables across all pages whose markup failed to parse.
type ParseReport struct {
	Status         string       `json:"status"`
	FileName       string       `json:"file_name"`
	FileType       string       `json:"file_type"`
	Pages          int          `json:"pages"`
	ProcessingTime float64      `json:"processing_time_seconds"`
	DegradedTables int          `json:"degraded_tables"`
	RunID          string       `json:"run_id"`
	Data           []PageResult `json:"data"`
}
