package trace

import (
	"strings"
	"testing"

	"github.com/nocsim/garnet"
)

func TestRecorderReaderRoundTrip(t *testing.T) {
	rec := NewRecorder()
	rec.RecordCycle(0, 0, 2)
	rec.RecordCycle(1, 3, 0)
	rec.RecordCycle(70000, 1, 65535)

	rd := NewReader(rec.Bytes())
	want := []Record{
		{Cycle: 0, RouterID: 0, CrossbarActivity: 2},
		{Cycle: 1, RouterID: 3, CrossbarActivity: 0},
		{Cycle: 70000, RouterID: 1, CrossbarActivity: 65535},
	}
	for i, w := range want {
		got, err := rd.Next()
		if err != nil {
			t.Fatalf("record %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Fatalf("record %d: got %+v, want %+v", i, got, w)
		}
	}
	if _, err := rd.Next(); err == nil {
		t.Fatalf("expected an error reading past the last recorded record")
	}
}

func TestDumpFlitRendersFieldsOnlyWhenStringified(t *testing.T) {
	route := garnet.RouteInfo{DestRouter: 1, SrcRouter: 0, VNet: 0}
	f := garnet.NewFlit(1, 1, 0, 0, garnet.HeadTailFlit, route, 1, false, 0)

	closure := DumpFlit(f) // must not invoke spew.Sdump yet
	f.ID = 424242          // a dump taken eagerly would miss this change
	out := closure.String()
	if out == "" {
		t.Fatalf("expected a non-empty dump once String() is called")
	}
	if !strings.Contains(out, "424242") {
		t.Fatalf("dump was rendered before String() was called: %s", out)
	}
}
