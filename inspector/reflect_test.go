package inspector

import (
	"testing"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/game"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag     string
		widget  Widget
		options map[string]string
	}{
		{"", WidgetAuto, map[string]string{}},
		{"bar,max:730", WidgetBar, map[string]string{"max": "730"}},
		{"label,fmt:%.1f", WidgetLabel, map[string]string{"fmt": "%.1f"}},
		{"angle", WidgetAngle, map[string]string{}},
		{"skip", WidgetSkip, map[string]string{}},
		{"sparkle", WidgetAuto, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			w, opts := ParseTag(tt.tag)
			if w != tt.widget {
				t.Errorf("widget = %v, want %v", w, tt.widget)
			}
			if len(opts) != len(tt.options) {
				t.Fatalf("options = %v, want %v", opts, tt.options)
			}
			for k, v := range tt.options {
				if opts[k] != v {
					t.Errorf("option %s = %q, want %q", k, opts[k], v)
				}
			}
		})
	}
}

func TestExtractFieldsFollowsTags(t *testing.T) {
	fields := ExtractFields(&components.Animation{Count: 3, Frame: 2})
	if len(fields) != 1 || fields[0].Name != "Frame" {
		t.Fatalf("fields = %+v, want only Frame", fields)
	}

	flight := ExtractFields(components.Flight{Velocity: -10.5, Ticks: 4, LaunchY: 350, Tilt: 25})
	want := []struct {
		name   string
		widget Widget
		text   string
	}{
		{"Velocity", WidgetLabel, "-10.5"},
		{"Ticks", WidgetLabel, "4"},
		{"LaunchY", WidgetLabel, "350"},
		{"Tilt", WidgetAngle, "25.00"},
	}
	if len(flight) != len(want) {
		t.Fatalf("got %d flight fields", len(flight))
	}
	for i, w := range want {
		f := flight[i]
		if f.Name != w.name || f.Widget != w.widget || f.Text() != w.text {
			t.Errorf("field %d = (%s, %v, %q), want (%s, %v, %q)", i, f.Name, f.Widget, f.Text(), w.name, w.widget, w.text)
		}
	}
}

func TestExtractFieldsRejectsNonStructs(t *testing.T) {
	if ExtractFields(42) != nil {
		t.Error("int should have no fields")
	}
	var nilPos *components.Position
	if ExtractFields(nilPos) != nil {
		t.Error("nil pointer should have no fields")
	}
}

func TestFieldMaxAndFloat(t *testing.T) {
	f := ExtractFields(components.Observation{Y: 365})[0]
	if f.Max() != 730 {
		t.Errorf("max = %v, want 730", f.Max())
	}
	if v, ok := f.Float(); !ok || v != 365 {
		t.Errorf("Float() = %v, %v", v, ok)
	}
	if f.Text() != "365" {
		t.Errorf("Text() = %q, want 365", f.Text())
	}

	plain := Field{Name: "x", Value: "hi"}
	if plain.Max() != 1 {
		t.Errorf("default max = %v", plain.Max())
	}
	if _, ok := plain.Float(); ok {
		t.Error("string should not convert to float")
	}
}

func TestSections(t *testing.T) {
	if s := Sections(game.Frame{LeadSlot: -1}); s != nil {
		t.Errorf("extinct frame sections = %v", s)
	}

	f := game.Frame{
		LeadSlot: 3,
		Birds:    []game.BirdFrame{{Slot: 3, X: 230, Y: 400}},
		Lead:     components.Observation{Y: 400, GapTop: 100, GapBottom: 100},
	}
	sections := Sections(f)
	titles := []string{"Position", "Flight", "Observation"}
	if len(sections) != len(titles) {
		t.Fatalf("sections = %d", len(sections))
	}
	for i, title := range titles {
		if sections[i].Title != title {
			t.Errorf("section %d = %s, want %s", i, sections[i].Title, title)
		}
	}
	if y := sections[0].Fields[1].Text(); y != "400.00" {
		t.Errorf("position Y = %q", y)
	}
}
