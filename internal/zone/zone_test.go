package zone

import "testing"

func TestBufferCapEqualsMinCapTotal(t *testing.T) {
	b := NewBuffer(3, true)
	for i := 0; i < 10; i++ {
		b.AppendText("line")
	}
	if b.Len() != 3 {
		t.Fatalf("len = %d, want 3", b.Len())
	}
	b2 := NewBuffer(10, true)
	b2.AppendText("a")
	b2.AppendText("b")
	if b2.Len() != 2 {
		t.Fatalf("len = %d, want min(10,2)=2", b2.Len())
	}
}

func TestBufferAutoScrollPinsToTail(t *testing.T) {
	b := NewBuffer(5, true)
	b.AppendText("0")
	b.AppendText("1")
	b.ScrollUp(1)
	if b.ScrollOffset == 0 {
		t.Fatalf("expected nonzero offset after manual scroll")
	}
	b.AppendText("2")
	if b.ScrollOffset != 0 {
		t.Fatalf("auto-scroll should reset offset to 0 on append, got %d", b.ScrollOffset)
	}
}

func TestRegistryCreateDuplicateRejected(t *testing.T) {
	r := NewRegistry()
	z1 := &Zone{Name: "Foo", Config: StaticConfig{}}
	if err := r.Create(z1); err != nil {
		t.Fatal(err)
	}
	z2 := &Zone{Name: "foo", Config: StaticConfig{}}
	if err := r.Create(z2); err == nil {
		t.Fatal("expected case-insensitive duplicate rejection")
	}
}

func TestRegistryDeleteDiscardsLateEvents(t *testing.T) {
	r := NewRegistry()
	z := &Zone{Name: "a", Config: StaticConfig{}, Buffer: NewBuffer(10, true)}
	_ = r.Create(z)
	_ = r.Delete("a")

	r.Post(Event{ZoneName: "a", Kind: EventAppend, Line: Line{Text: "late"}})
	applied := r.Drain(0, func(zz *Zone, ev Event) {
		zz.Buffer.Append(ev.Line)
	})
	if applied != 0 {
		t.Fatalf("expected 0 applied events for deleted zone, got %d", applied)
	}
}

func TestZoneAtReturnsNewestOnOverlap(t *testing.T) {
	r := NewRegistry()
	first := &Zone{Name: "first", X: 0, Y: 0, W: 10, H: 10, Config: StaticConfig{}}
	second := &Zone{Name: "second", X: 5, Y: 5, W: 10, H: 10, Config: StaticConfig{}}
	_ = r.Create(first)
	_ = r.Create(second)
	got := r.ZoneAt(6, 6)
	if got == nil || got.Name != "second" {
		t.Fatalf("expected newest zone to win overlap, got %+v", got)
	}
}
