package backend

import (
	"errors"
	"testing"
)

func TestBatchesConsecutivePlainChars(t *testing.T) {
	sink := &MemorySink{}
	w := NewBatchWriter(sink)
	w.MoveTo(0, 0)
	w.Print("a")
	w.Print("b")
	w.Print("c")
	w.PrintInverted("x")
	prints, cells, err := w.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if prints != 2 {
		t.Errorf("prints = %d, want 2 (one batched, one inverted)", prints)
	}
	if cells < prints {
		t.Errorf("invariant violated: prints %d > cells %d", prints, cells)
	}

	got := sink.OfKind(CmdPrint)
	if len(got) != 1 || got[0].Text != "abc" {
		t.Errorf("batched print = %+v, want one \"abc\"", got)
	}
	if inv := sink.OfKind(CmdPrintInverted); len(inv) != 1 || inv[0].Text != "x" {
		t.Errorf("inverted = %+v", inv)
	}
	if sink.Flushes != 1 {
		t.Errorf("sink flushed %d times, want 1", sink.Flushes)
	}
}

func TestMultiByteTextEmitsOwnCommand(t *testing.T) {
	sink := &MemorySink{}
	w := NewBatchWriter(sink)
	w.Print("a")
	w.Print("世")
	w.Print("b")
	prints, cells, err := w.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if prints != 3 {
		t.Errorf("prints = %d, want 3", prints)
	}
	if cells != 3 {
		t.Errorf("cells = %d, want 3", cells)
	}
	got := sink.OfKind(CmdPrint)
	if len(got) != 3 || got[0].Text != "a" || got[1].Text != "世" || got[2].Text != "b" {
		t.Errorf("commands = %+v", got)
	}
}

func TestMovementFlushesBatch(t *testing.T) {
	sink := &MemorySink{}
	w := NewBatchWriter(sink)
	w.Print("a")
	w.Print("b")
	w.MoveTo(0, 1)
	w.Print("c")
	if _, _, err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	got := sink.OfKind(CmdPrint)
	if len(got) != 2 || got[0].Text != "ab" || got[1].Text != "c" {
		t.Errorf("prints = %+v, want [ab c]", got)
	}
}

func TestScrollCommandsAreBoundaries(t *testing.T) {
	sink := &MemorySink{}
	w := NewBatchWriter(sink)
	w.Print("a")
	w.ScrollUp(1, 0, 6)
	w.Print("b")
	if _, _, err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(sink.Commands) != 3 {
		t.Fatalf("commands = %+v, want print/scroll/print", sink.Commands)
	}
	if sink.Commands[1].Kind != CmdScrollUp || sink.Commands[1].N != 1 ||
		sink.Commands[1].Top != 0 || sink.Commands[1].Bottom != 6 {
		t.Errorf("scroll command = %+v", sink.Commands[1])
	}
}

func TestEmptyPrintDropped(t *testing.T) {
	sink := &MemorySink{}
	w := NewBatchWriter(sink)
	w.Print("")
	w.PrintInverted("")
	prints, cells, err := w.Flush()
	if err != nil || prints != 0 || cells != 0 {
		t.Errorf("prints/cells/err = %d/%d/%v, want 0/0/nil", prints, cells, err)
	}
	if len(sink.Commands) != 0 {
		t.Errorf("commands = %+v, want none", sink.Commands)
	}
}

func TestFlushResetsWriter(t *testing.T) {
	sink := &MemorySink{}
	w := NewBatchWriter(sink)
	w.Print("a")
	if _, _, err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	prints, cells, err := w.Flush()
	if err != nil || prints != 0 || cells != 0 {
		t.Errorf("second flush = %d/%d/%v, want empty", prints, cells, err)
	}
}

func TestApplyErrorPropagates(t *testing.T) {
	wantErr := errors.New("boom")
	sink := &MemorySink{ApplyErr: wantErr}
	w := NewBatchWriter(sink)
	w.Print("a")
	if _, _, err := w.Flush(); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
