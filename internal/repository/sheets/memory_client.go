package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"frontdesk-rental-backend/internal/schema"
)

// MemoryClient keeps sheets in process memory. It backs the "memory" driver for
// local runs without Google credentials and doubles as the store fake in tests.
type MemoryClient struct {
	mu     sync.Mutex
	sheets map[string]*memorySheet
	nextID int64
}

type memorySheet struct {
	id   int64
	rows [][]string
}

// NewMemoryClient creates a client holding the given sheets, each seeded with
// its header row.
func NewMemoryClient(headers map[string][]string) *MemoryClient {
	c := &MemoryClient{sheets: make(map[string]*memorySheet)}
	for title, header := range headers {
		c.addSheet(title, header)
	}
	return c
}

func (c *MemoryClient) addSheet(title string, header []string) *memorySheet {
	c.nextID++
	sh := &memorySheet{id: c.nextID}
	if header != nil {
		sh.rows = append(sh.rows, append([]string(nil), header...))
	}
	c.sheets[title] = sh
	return sh
}

// Rows returns a copy of every row of a sheet, header included.
func (c *MemoryClient) Rows(title string) [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	sh, ok := c.sheets[title]
	if !ok {
		return nil
	}
	return copyRows(sh.rows)
}

func (c *MemoryClient) GetValues(ctx context.Context, rng string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	a, sh, err := c.resolve(rng)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for r := a.startRow; r < len(sh.rows) && (a.endRow < 0 || r <= a.endRow); r++ {
		row := sh.rows[r]
		end := len(row) - 1
		if a.endCol >= 0 && a.endCol < end {
			end = a.endCol
		}
		var cells []string
		if a.startCol <= end {
			cells = append([]string(nil), row[a.startCol:end+1]...)
		}
		out = append(out, trimTrailing(cells))
	}
	// Like the API, trailing empty rows are not returned.
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (c *MemoryClient) BatchUpdate(ctx context.Context, updates []CellUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// Validate every range first so the batch applies all or nothing.
	type target struct {
		a  a1Range
		sh *memorySheet
	}
	targets := make([]target, len(updates))
	for i, u := range updates {
		a, sh, err := c.resolve(u.Range)
		if err != nil {
			return err
		}
		targets[i] = target{a: a, sh: sh}
	}
	for i, u := range updates {
		writeRows(targets[i].sh, targets[i].a, u.Values)
	}
	return nil
}

func (c *MemoryClient) AppendRow(ctx context.Context, rng string, row []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	_, sh, err := c.resolve(rng)
	if err != nil {
		return err
	}
	sh.rows = append(sh.rows, append([]string(nil), row...))
	return nil
}

func (c *MemoryClient) UpdateRange(ctx context.Context, rng string, rows [][]string) error {
	return c.BatchUpdate(ctx, []CellUpdate{{Range: rng, Values: rows}})
}

func (c *MemoryClient) ClearRange(ctx context.Context, rng string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	a, sh, err := c.resolve(rng)
	if err != nil {
		return err
	}
	for r := a.startRow; r < len(sh.rows) && (a.endRow < 0 || r <= a.endRow); r++ {
		for col := a.startCol; col < len(sh.rows[r]) && (a.endCol < 0 || col <= a.endCol); col++ {
			sh.rows[r][col] = ""
		}
	}
	return nil
}

func (c *MemoryClient) SheetID(ctx context.Context, title string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sh, ok := c.sheets[title]
	if !ok {
		return 0, fmt.Errorf("%s sheet not found in spreadsheet", title)
	}
	return sh.id, nil
}

func (c *MemoryClient) DeleteRows(ctx context.Context, sheetID int64, start, end int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sh := range c.sheets {
		if sh.id != sheetID {
			continue
		}
		if start < 0 || end > int64(len(sh.rows)) || start >= end {
			return fmt.Errorf("row range [%d,%d) out of bounds", start, end)
		}
		sh.rows = append(sh.rows[:start], sh.rows[end:]...)
		return nil
	}
	return fmt.Errorf("sheet id %d not found", sheetID)
}

func (c *MemoryClient) resolve(rng string) (a1Range, *memorySheet, error) {
	a, err := parseA1(rng)
	if err != nil {
		return a, nil, err
	}
	sh, ok := c.sheets[a.sheet]
	if !ok {
		return a, nil, fmt.Errorf("unable to parse range: %s", rng)
	}
	return a, sh, nil
}

func writeRows(sh *memorySheet, a a1Range, values [][]string) {
	for i, vals := range values {
		r := a.startRow + i
		for len(sh.rows) <= r {
			sh.rows = append(sh.rows, nil)
		}
		for j, v := range vals {
			col := a.startCol + j
			for len(sh.rows[r]) <= col {
				sh.rows[r] = append(sh.rows[r], "")
			}
			sh.rows[r][col] = v
		}
	}
}

// a1Range is a parsed A1 range with zero-based bounds; -1 means unbounded.
type a1Range struct {
	sheet    string
	startCol int
	startRow int
	endCol   int
	endRow   int
}

func parseA1(rng string) (a1Range, error) {
	a := a1Range{endCol: -1, endRow: -1}
	sheet, cells, found := strings.Cut(rng, "!")
	a.sheet = strings.Trim(sheet, "'")
	if !found {
		return a, nil
	}
	start, end, isSpan := strings.Cut(cells, ":")
	sc, sr, err := parseCell(start)
	if err != nil {
		return a, fmt.Errorf("unable to parse range: %s", rng)
	}
	a.startCol, a.startRow = max(sc, 0), max(sr, 0)
	if !isSpan {
		a.endCol, a.endRow = sc, sr
		return a, nil
	}
	ec, er, err := parseCell(end)
	if err != nil {
		return a, fmt.Errorf("unable to parse range: %s", rng)
	}
	a.endCol, a.endRow = ec, er
	return a, nil
}

// parseCell splits "AE12" into zero-based column and row; a missing part is -1.
func parseCell(cell string) (int, int, error) {
	i := 0
	for i < len(cell) && (cell[i] < '0' || cell[i] > '9') {
		i++
	}
	col, row := -1, -1
	if i > 0 {
		idx, err := schema.ColumnIndex(cell[:i])
		if err != nil {
			return 0, 0, err
		}
		col = idx
	}
	if i < len(cell) {
		n, err := strconv.Atoi(cell[i:])
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("invalid row in %q", cell)
		}
		row = n - 1
	}
	if col < 0 && row < 0 {
		return 0, 0, fmt.Errorf("empty cell reference")
	}
	return col, row, nil
}

func trimTrailing(cells []string) []string {
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
