package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"disboard/board"
	"disboard/gametree"
	"disboard/pipeline"
)

func TestQueueOrderAndClose(t *testing.T) {
	q := pipeline.NewQueue[int]()
	for i := 0; i < 1000; i++ {
		if err := q.Send(i); err != nil {
			t.Fatal(err)
		}
	}
	q.Close()
	if err := q.Send(1000); !errors.Is(err, pipeline.ErrDisconnected) {
		t.Fatalf("Send after Close err = %v", err)
	}
	for i := 0; i < 1000; i++ {
		v, ok := q.Recv()
		if !ok || v != i {
			t.Fatalf("Recv = %d, %v; want %d", v, ok, i)
		}
	}
	if _, ok := q.Recv(); ok {
		t.Fatalf("Recv on a closed drained queue must report false")
	}
	q.Close()
}

func TestQueueRecvBlocksUntilSend(t *testing.T) {
	q := pipeline.NewQueue[string]()
	got := make(chan string)
	go func() {
		v, _ := q.Recv()
		got <- v
	}()
	select {
	case v := <-got:
		t.Fatalf("Recv returned %q before anything was sent", v)
	case <-time.After(20 * time.Millisecond):
	}
	q.Send("x")
	select {
	case v := <-got:
		if v != "x" {
			t.Fatalf("Recv = %q", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("Recv did not wake")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := pipeline.NewQueue[int]()
	const producers, each = 8, 500
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				q.Send(p*each + i)
			}
		}(p)
	}
	go func() {
		wg.Wait()
		q.Close()
	}()

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	n := 0
	for {
		v, ok := q.Recv()
		if !ok {
			break
		}
		p := v / each
		if v <= last[p] {
			t.Fatalf("producer %d out of order: %d after %d", p, v, last[p])
		}
		last[p] = v
		n++
	}
	if n != producers*each {
		t.Fatalf("received %d values", n)
	}
}

func TestSquareAt(t *testing.T) {
	tests := []struct {
		x, y float32
		size uint32
		want string
	}{
		{0, 0, 8, "a8"},
		{63.9, 63.9, 8, "h1"},
		{36, 52, 8, "e2"},
		{450, 250, 100, "e6"},
		{64, 10, 8, "-"},
		{10, 64, 8, "-"},
		{-1, 10, 8, "-"},
		{10, 10, 0, "-"},
	}
	for _, tt := range tests {
		if got := pipeline.SquareAt(tt.x, tt.y, tt.size).String(); got != tt.want {
			t.Errorf("SquareAt(%v, %v, %d) = %s, want %s", tt.x, tt.y, tt.size, got, tt.want)
		}
	}
	for sq := board.Square(0); sq < 64; sq++ {
		x, y := pipeline.SquareCenter(sq, 40)
		if got := pipeline.SquareAt(x, y, 40); got != sq {
			t.Fatalf("SquareAt(SquareCenter(%s)) = %s", sq, got)
		}
	}
}

type recordingBackend struct {
	got  []pipeline.Slot
	fail int
}

func (b *recordingBackend) HandleSlot(s pipeline.Slot) error {
	b.got = append(b.got, s)
	if b.fail > 0 && len(b.got) == b.fail {
		return pipeline.ErrDisconnected
	}
	return nil
}

func TestServe(t *testing.T) {
	slots := pipeline.NewQueue[pipeline.Slot]()
	slots.Send(pipeline.Resync{})
	slots.Send(pipeline.TraverseForward{})
	slots.Send(pipeline.ChoosePromotion{Index: 4})
	slots.Close()

	b := &recordingBackend{}
	if err := pipeline.Serve(slots, b); err != nil {
		t.Fatal(err)
	}
	if len(b.got) != 3 || b.got[2] != (pipeline.ChoosePromotion{Index: 4}) {
		t.Fatalf("backend saw %v", b.got)
	}

	slots = pipeline.NewQueue[pipeline.Slot]()
	slots.Send(pipeline.Resync{})
	slots.Send(pipeline.Resync{})
	slots.Send(pipeline.Resync{})
	b = &recordingBackend{fail: 2}
	if err := pipeline.Serve(slots, b); !errors.Is(err, pipeline.ErrDisconnected) {
		t.Fatalf("Serve err = %v", err)
	}
	if len(b.got) != 2 {
		t.Fatalf("Serve kept going after a backend error")
	}
}

func TestRelayPreservesOrder(t *testing.T) {
	signals := pipeline.NewQueue[pipeline.Signal]()
	sq := pipeline.NewServiceQueue(0)
	var got []pipeline.Signal
	present := pipeline.PresenterFunc(func(s pipeline.Signal) { got = append(got, s) })

	for i := 0; i < 64; i++ {
		signals.Send(pipeline.SetHighlight{Square: board.Square(i)})
	}
	signals.Close()

	relayErr := make(chan error, 1)
	go func() {
		relayErr <- pipeline.Relay(signals, sq, present)
		sq.Stop()
	}()
	if err := sq.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := <-relayErr; err != nil {
		t.Fatal(err)
	}
	if len(got) != 64 {
		t.Fatalf("presented %d signals", len(got))
	}
	for i, s := range got {
		if s != (pipeline.SetHighlight{Square: board.Square(i)}) {
			t.Fatalf("signal %d = %v", i, s)
		}
	}
}

func TestServiceQueueStop(t *testing.T) {
	sq := pipeline.NewServiceQueue(4)
	ran := 0
	sq.Dispatch(func() { ran++ })
	sq.Dispatch(func() { ran++ })
	if n := sq.Service(); n != 2 || ran != 2 {
		t.Fatalf("Service ran %d (%d)", n, ran)
	}
	sq.Stop()
	sq.Stop()
	if err := sq.Dispatch(func() {}); !errors.Is(err, pipeline.ErrDisconnected) {
		t.Fatalf("Dispatch after Stop err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pipeline.NewServiceQueue(0).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v", err)
	}
}

// echo answers every slot with one signal naming it.
type echo struct {
	emit func(pipeline.Signal) error
}

func (e echo) HandleSlot(s pipeline.Slot) error {
	switch s := s.(type) {
	case pipeline.ChoosePromotion:
		return e.emit(pipeline.SetPromotionPending{File: int8(s.Index)})
	default:
		return e.emit(pipeline.SetMovetext{Text: "?"})
	}
}

func TestSession(t *testing.T) {
	sess := pipeline.NewSession()
	sq := pipeline.NewServiceQueue(1)
	var got []pipeline.Signal
	sess.Start(echo{emit: sess.Emit}, sq, pipeline.PresenterFunc(func(s pipeline.Signal) {
		got = append(got, s)
	}))

	for i := uint8(0); i < 10; i++ {
		if err := sess.Send(pipeline.ChoosePromotion{Index: i}); err != nil {
			t.Fatal(err)
		}
	}
	sess.Close()
	if err := sess.Send(pipeline.Resync{}); !errors.Is(err, pipeline.ErrDisconnected) {
		t.Fatalf("Send after Close err = %v", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- sess.Wait()
		sq.Stop()
	}()
	if err := sq.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := <-waitErr; err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 {
		t.Fatalf("presented %d signals", len(got))
	}
	for i, s := range got {
		if s != (pipeline.SetPromotionPending{File: int8(i)}) {
			t.Fatalf("signal %d = %v", i, s)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		sig  pipeline.Signal
		want string
	}{
		{pipeline.MovePiece{Src: mustSquare(t, "e2"), Dest: mustSquare(t, "e4")}, "move e2 e4"},
		{pipeline.SetHighlight{Square: board.NoSquare}, "highlight -"},
		{pipeline.ShowPhantom{Piece: board.NoPiece}, "phantom -"},
		{pipeline.ShowPhantom{Piece: board.Piece{Color: board.White, Role: board.Knight}}, "phantom N"},
		{pipeline.SetHints{Squares: []board.Square{mustSquare(t, "e3"), mustSquare(t, "e4")}}, "hints e3,e4"},
		{pipeline.SetCaptures{Squares: []board.Square{}}, "captures "},
		{pipeline.SetPromotionPending{File: -1}, "promoting -1"},
		{pipeline.SetMovetext{Text: "1. e4"}, "movetext 1. e4"},
	}
	for _, tt := range tests {
		if got := pipeline.Describe(tt.sig); got != tt.want {
			t.Errorf("Describe(%#v) = %q, want %q", tt.sig, got, tt.want)
		}
	}
}

func mustSquare(t *testing.T, s string) board.Square {
	t.Helper()
	sq, err := board.ParseSquare(s)
	if err != nil {
		t.Fatal(err)
	}
	return sq
}

func TestSessionSyncRunsAfterEarlierSignals(t *testing.T) {
	sess := pipeline.NewSession()
	sq := pipeline.NewServiceQueue(0)
	var got []string
	sess.Start(echo{emit: sess.Emit}, sq, pipeline.PresenterFunc(func(s pipeline.Signal) {
		got = append(got, pipeline.Describe(s))
	}))

	sess.Send(pipeline.ChoosePromotion{Index: 1})
	sess.Send(pipeline.ChoosePromotion{Index: 2})
	sess.Sync(func() { got = append(got, "sync") })
	sess.Send(pipeline.ChoosePromotion{Index: 3})
	sess.Close()

	go func() {
		sess.Wait()
		sq.Stop()
	}()
	if err := sq.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{"promoting 1", "promoting 2", "sync", "promoting 3"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func newID() gametree.NodeID { return gametree.NodeID(uuid.New()) }

func TestMoveListLayout(t *testing.T) {
	root, e4, e5, c5, nf3 := newID(), newID(), newID(), newID(), newID()
	l := pipeline.SetMoveList{
		Root: root,
		Entries: []gametree.ListEntry{
			{Node: e4, SAN: "e4"},
			{Node: e5, SAN: "e5", Variations: []gametree.ListEntry{{Node: c5, SAN: "c5"}}},
			{Node: nf3, SAN: "Nf3"},
		},
		Current: c5,
	}
	if l.Rows() != 2 {
		t.Fatalf("Rows = %d", l.Rows())
	}
	for i := range l.Entries {
		row, col := l.Cell(i)
		if l.At(row, col) != i {
			t.Fatalf("entry %d drawn at (%d, %d) maps back to %d", i, row, col, l.At(row, col))
		}
	}
	if l.At(1, 1) != -1 || l.At(0, 2) != -1 {
		t.Fatalf("empty cells must map to -1")
	}
	if id, ok := l.Target(2, 1); !ok || id != c5 {
		t.Fatalf("Target(2, 1) = %v, %v", id, ok)
	}
	if id, ok := l.Target(0, 0); !ok || id != root {
		t.Fatalf("Target(0, 0) = %v, %v", id, ok)
	}
	for _, bad := range [][2]int{{4, 0}, {1, 1}, {2, 2}, {-1, 0}} {
		if _, ok := l.Target(bad[0], bad[1]); ok {
			t.Fatalf("Target%v resolved", bad)
		}
	}
	if got := pipeline.Describe(l); got != "movelist 2.1 e4 e5(c5) Nf3" {
		t.Fatalf("Describe = %q", got)
	}
	l.Current = newID()
	if got := pipeline.Describe(l); got != "movelist - e4 e5(c5) Nf3" {
		t.Fatalf("Describe = %q", got)
	}

	// Black first: the first row only has Black's move
	l.BlackFirst = true
	if row, col := l.Cell(0); row != 0 || col != 1 {
		t.Fatalf("Cell(0) = %d, %d", row, col)
	}
	if l.At(0, 0) != -1 || l.At(1, 0) != 1 || l.Rows() != 2 {
		t.Fatalf("black-first layout wrong")
	}
}
