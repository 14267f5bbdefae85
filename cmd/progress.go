package cmd

import (
	"fmt"
	"io"
	"time"
)

// tableProgress prints one line roughly every 5% of a table plus a summary.
// It serves both backup directions; verb is shown in every line.
type tableProgress struct {
	out   io.Writer
	verb  string
	table string
	total int
	done  int
	shown int
	start time.Time
}

func newTableProgress(out io.Writer, verb string) *tableProgress {
	return &tableProgress{out: out, verb: verb}
}

func (p *tableProgress) StartTable(table string, total int) {
	p.table, p.total, p.done, p.shown = table, max(total, 0), 0, 0
	p.start = time.Now()
	fmt.Fprintf(p.out, "%s %s: 共 %d 行\n", p.verb, table, p.total)
}

func (p *tableProgress) Increment(table string, delta int) {
	if table != p.table || delta <= 0 {
		return
	}
	p.done += delta
	if p.done-p.shown >= p.step() {
		fmt.Fprintf(p.out, "%s %s: %s\n", p.verb, table, p.ratio())
		p.shown = p.done
	}
}

func (p *tableProgress) FinishTable(table string) {
	if table != p.table {
		return
	}
	fmt.Fprintf(p.out, "%s %s 完成: %s, 用时 %s\n", p.verb, table, p.ratio(), time.Since(p.start).Round(time.Millisecond))
	p.table = ""
}

func (p *tableProgress) step() int {
	if p.total == 0 {
		return 1000
	}
	return min(max(p.total/20, 1), 1000)
}

func (p *tableProgress) ratio() string {
	if p.total == 0 {
		return fmt.Sprintf("%d 行", p.done)
	}
	return fmt.Sprintf("%d/%d 行", p.done, p.total)
}
