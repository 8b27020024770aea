// Package hypothetical evaluates hypothetical-set rank functions. Each call
// probes a sorted group working set with one synthetic row and reports the
// position that row would occupy.
package hypothetical

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/rulego/setagg/dataset"
	"github.com/rulego/setagg/types"
)

// SortContext is the group working set supplied by the execution engine.
// *tuplesort.Context satisfies it. The shape must carry the ordered columns
// followed by one boolean marker column; group rows keep the marker false or
// null so only the probe row answers true.
type SortContext interface {
	Shape() *dataset.Shape
	Len() int
	Push(row dataset.Row) error
	Sort() error
	Row(i int) dataset.Row
	Remove(i int)
	RowsEqual(a, b dataset.Row, columns []int) (bool, error)
}

// EvaluationError reports a mismatch between the call arguments and the sort
// context shape. Shapes derive from the validated aggregate definition, so a
// mismatch is a defect in the calling engine rather than bad user input.
type EvaluationError struct {
	Function string
	Message  string
	// Column is the offending column index, or -1 when the mismatch is not
	// tied to one column.
	Column int
	Want   types.ID
	Got    types.ID
}

func (e *EvaluationError) Error() string {
	var sb strings.Builder
	sb.WriteString("[SHAPE_MISMATCH] ")
	if e.Function != "" {
		sb.WriteString("type mismatch in ")
		sb.WriteString(e.Function)
		sb.WriteString("(): ")
	}
	sb.WriteString(e.Message)
	if e.Column >= 0 {
		sb.WriteString(fmt.Sprintf(" (column %d", e.Column+1))
		if e.Want != types.Invalid || e.Got != types.Invalid {
			sb.WriteString(fmt.Sprintf(", want type %d, got type %d", e.Want, e.Got))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

// Rank returns the 1-based position the probe row would occupy in the sorted
// group. The sort is stable and the probe is pushed last, so a probe equal to
// existing rows ranks after them.
func Rank(sc SortContext, argTypes []types.ID, args []dataset.Datum) (int64, error) {
	rank, _, err := scan(sc, "rank", argTypes, args, false)
	return rank, err
}

// DenseRank returns the probe position counting runs of equal rows before the
// probe as a single position.
func DenseRank(sc SortContext, argTypes []types.ID, args []dataset.Datum) (int64, error) {
	rank, duplicates, err := scan(sc, "dense_rank", argTypes, args, true)
	if err != nil {
		return 0, err
	}
	return rank - duplicates, nil
}

// PercentRank returns (rank-1)/groupRows where groupRows excludes the probe
// row. An otherwise empty group yields 0.
func PercentRank(sc SortContext, argTypes []types.ID, args []dataset.Datum) (float64, error) {
	groupRows := sc.Len()
	rank, _, err := scan(sc, "percent_rank", argTypes, args, false)
	if err != nil {
		return 0, err
	}
	if groupRows == 0 {
		return 0, nil
	}
	return float64(rank-1) / float64(groupRows), nil
}

// CumeDist returns rank/(groupRows+1); unlike PercentRank the probe row
// counts in its own denominator.
func CumeDist(sc SortContext, argTypes []types.ID, args []dataset.Datum) (float64, error) {
	groupRows := sc.Len()
	rank, _, err := scan(sc, "cume_dist", argTypes, args, false)
	if err != nil {
		return 0, err
	}
	return float64(rank) / float64(groupRows+1), nil
}

// scan runs one insert-sort-scan cycle: push the probe row with a true
// marker, sort, then count rows ahead of the marker. With dense it also
// counts rows that equal their predecessor on the ordered columns, so the
// caller can collapse duplicate positions. The probe row is removed again on
// every path, keeping the context reusable for further probes of the same
// group.
func scan(sc SortContext, name string, argTypes []types.ID, args []dataset.Datum, dense bool) (rank int64, duplicates int64, err error) {
	if err := checkShape(sc, name, argTypes, args); err != nil {
		return 0, 0, err
	}
	nargs := len(args)
	flagCol := nargs

	probe := make(dataset.Row, nargs+1)
	copy(probe, args)
	probe[flagCol] = dataset.NewDatum(true)
	if err := sc.Push(probe); err != nil {
		return 0, 0, err
	}
	defer removeProbe(sc, flagCol)

	if err := sc.Sort(); err != nil {
		return 0, 0, err
	}

	var orderedCols []int
	if dense {
		orderedCols = make([]int, nargs)
		for i := range orderedCols {
			orderedCols[i] = i
		}
	}

	rank = 1
	for i := 0; i < sc.Len(); i++ {
		row := sc.Row(i)
		if flag := row[flagCol]; !flag.IsNull() && cast.ToBool(flag.Value) {
			break
		}
		if dense && i > 0 {
			eq, eqErr := sc.RowsEqual(row, sc.Row(i-1), orderedCols)
			if eqErr != nil {
				return 0, 0, eqErr
			}
			if eq {
				duplicates++
			}
		}
		rank++
	}
	return rank, duplicates, nil
}

// removeProbe drops the first row whose marker column is non-null true.
func removeProbe(sc SortContext, flagCol int) {
	for i := 0; i < sc.Len(); i++ {
		if flag := sc.Row(i)[flagCol]; !flag.IsNull() && cast.ToBool(flag.Value) {
			sc.Remove(i)
			return
		}
	}
}

// checkShape validates the call arguments against the context shape: one
// extra trailing boolean column, and every argument type equal to its column
// type. Shape failures abort before the probe row is pushed, so a rejected
// call leaves the context untouched.
func checkShape(sc SortContext, name string, argTypes []types.ID, args []dataset.Datum) error {
	nargs := len(args)
	if len(argTypes) != nargs {
		return &EvaluationError{
			Function: name,
			Column:   -1,
			Message:  fmt.Sprintf("%d argument types supplied for %d arguments", len(argTypes), nargs),
		}
	}
	shape := sc.Shape()
	if shape == nil || shape.NumColumns() != nargs+1 {
		got := 0
		if shape != nil {
			got = shape.NumColumns()
		}
		return &EvaluationError{
			Function: name,
			Column:   -1,
			Message:  fmt.Sprintf("sort context has %d columns, want %d", got, nargs+1),
		}
	}
	if t := shape.ColumnType(nargs); t != types.Bool {
		return &EvaluationError{
			Function: name,
			Column:   nargs,
			Want:     types.Bool,
			Got:      t,
			Message:  "trailing marker column is not boolean",
		}
	}
	for i := 0; i < nargs; i++ {
		if argTypes[i] != shape.ColumnType(i) {
			return &EvaluationError{
				Function: name,
				Column:   i,
				Want:     shape.ColumnType(i),
				Got:      argTypes[i],
				Message:  "argument type does not match its sort column",
			}
		}
	}
	return nil
}
