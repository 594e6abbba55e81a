package dataset_test

import (
	"context"
	"errors"
	"testing"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	imp "github.com/wdm0006/socioprep/pkg/transform/impute"
	std "github.com/wdm0006/socioprep/pkg/transform/standardize"
)

func TestPipeline(t *testing.T) {
	s := ds.Schema{Columns: []ds.ColumnSchema{{Name: "x", Type: ds.KindFloat, Nullable: true}, {Name: "s", Type: ds.KindString, Nullable: true}}}
	f := ds.NewFrame(s)
	for i := 0; i < 2; i++ {
		f.AppendNullRow()
	}
	_ = f.SetCell(0, "x", 1.0)
	_ = f.SetCell(0, "s", " Foo ")
	// row 1 left nulls

	p := ds.NewPipeline().Add(&imp.Mean{Column: "x"}).Add(&std.Trim{Columns: []string{"s"}})
	out, err := p.Run(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	colX, _ := out.ColumnByName("x")
	fx := colX.(*ds.FloatColumn)
	if fx.IsNull(1) {
		t.Fatal("imputer failed to fill null")
	}
	colS, _ := out.ColumnByName("s")
	ss := colS.(*ds.StringColumn)
	s0, _ := ss.Get(0)
	if s0 != "Foo" {
		t.Fatalf("trim failed, got %q", s0)
	}

	// the input frame is not touched by Run
	inX, _ := f.ColumnByName("x")
	if !inX.IsNull(1) {
		t.Fatal("pipeline mutated its input frame")
	}
	if got := p.Steps(); len(got) != 2 || got[0] != "impute_mean" || got[1] != "trim" {
		t.Fatalf("unexpected steps %v", got)
	}
}

type failing struct{}

func (failing) Name() string { return "boom" }
func (failing) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	return nil, ds.ErrMissingColumn
}

func TestPipelineWrapsStepError(t *testing.T) {
	f := ds.NewFrame(ds.Schema{Columns: []ds.ColumnSchema{{Name: "x", Type: ds.KindFloat}}})
	_, err := ds.NewPipeline().Add(failing{}).Run(context.Background(), f)
	if !errors.Is(err, ds.ErrMissingColumn) {
		t.Fatalf("expected wrapped ErrMissingColumn, got %v", err)
	}
	if err.Error() != "step boom: missing column" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
