package sax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type recordedEvent struct {
	Event Event
	Tag   *Tag
	Attr  *Attribute
	Text  *Text
	Proc  *ProcInst
}

func collectEvents(events Event, write func(p *Parser)) []recordedEvent {
	var got []recordedEvent
	p := NewParser(func(event Event, data interface{}) {
		rec := recordedEvent{Event: event}
		switch v := data.(type) {
		case *Tag:
			cp := *v
			cp.Name = append([]byte(nil), v.Name...)
			cp.Attributes = append([]Attribute(nil), v.Attributes...)
			cp.TextNodes = append([]Text(nil), v.TextNodes...)
			rec.Tag = &cp
		case *Attribute:
			cp := *v
			rec.Attr = &cp
		case *Text:
			cp := *v
			cp.Value = append([]byte(nil), v.Value...)
			rec.Text = &cp
		case *ProcInst:
			cp := *v
			rec.Proc = &cp
		}
		got = append(got, rec)
	})
	p.Events = events
	write(p)
	return got
}

func TestParserSelfClosingTagWithAttributes(t *testing.T) {
	got := collectEvents(EventOpenTag|EventCloseTag|EventAttribute, func(p *Parser) {
		p.Write([]byte(`<a b="1" c='2'/>`))
		p.End()
	})

	if assert.Len(t, got, 4) {
		assert.Equal(t, EventAttribute, got[0].Event)
		assert.Equal(t, []byte("b"), got[0].Attr.Name.Value)
		assert.Equal(t, []byte("1"), got[0].Attr.Value.Value)

		assert.Equal(t, EventAttribute, got[1].Event)
		assert.Equal(t, []byte("c"), got[1].Attr.Name.Value)
		assert.Equal(t, []byte("2"), got[1].Attr.Value.Value)

		assert.Equal(t, EventOpenTag, got[2].Event)
		assert.Equal(t, []byte("a"), got[2].Tag.Name)
		assert.True(t, got[2].Tag.SelfClosing)

		assert.Equal(t, EventCloseTag, got[3].Event)
		assert.Equal(t, []byte("a"), got[3].Tag.Name)
	}
}

func TestParserTextBetweenTags(t *testing.T) {
	got := collectEvents(EventOpenTag|EventCloseTag|EventText, func(p *Parser) {
		p.Write([]byte(`<x>hi</x>`))
		p.End()
	})

	if assert.Len(t, got, 3) {
		assert.Equal(t, EventOpenTag, got[0].Event)
		assert.Equal(t, EventText, got[1].Event)
		assert.Equal(t, []byte("hi"), got[1].Text.Value)
		assert.Equal(t, Position{0, 3}, got[1].Text.Start)
		assert.Equal(t, Position{0, 4}, got[1].Text.End)
		assert.Equal(t, EventCloseTag, got[2].Event)
		assert.Equal(t, Position{0, 9}, got[2].Tag.CloseEnd)
	}
}

func TestParserCommentFakeOut(t *testing.T) {
	got := collectEvents(EventComment, func(p *Parser) {
		p.Write([]byte(`<!-- a -- b -->`))
		p.End()
	})

	if assert.Len(t, got, 1) {
		assert.Equal(t, EventComment, got[0].Event)
		assert.Equal(t, []byte(" a -- b "), got[0].Text.Value)
	}
}

func TestParserDanglingBytesAcrossWrites(t *testing.T) {
	dragon := []byte("\U0001F409") // F0 9F 90 89, split 1 byte / 3 bytes across writes

	var events []recordedEvent
	p := NewParser(func(event Event, data interface{}) {
		rec := recordedEvent{Event: event}
		switch v := data.(type) {
		case *Tag:
			cp := *v
			events = append(events, recordedEvent{Event: event, Tag: &cp})
			return
		case *Text:
			cp := *v
			cp.Value = append([]byte(nil), v.Value...)
			rec.Text = &cp
		}
		events = append(events, rec)
	})
	p.Events = EventOpenTag | EventCloseTag | EventText
	p.Write([]byte("<foo>"))
	p.Write(dragon[:1])
	p.Write(append(append([]byte{}, dragon[1:]...), []byte("</foo>")...))
	p.End()

	if assert.Len(t, events, 3) {
		assert.Equal(t, EventOpenTag, events[0].Event)
		assert.Equal(t, EventText, events[1].Event)
		assert.Equal(t, dragon, events[1].Text.Value)
		assert.Equal(t, Position{0, 5}, events[1].Text.Start)
		assert.Equal(t, Position{0, 6}, events[1].Text.End)
		assert.Equal(t, EventCloseTag, events[2].Event)
	}
}

func TestParserProcessingInstruction(t *testing.T) {
	got := collectEvents(EventProcessingInstruction, func(p *Parser) {
		p.Write([]byte(`<?xml version="1.0"?>`))
		p.End()
	})

	if assert.Len(t, got, 1) {
		assert.Equal(t, []byte("xml"), got[0].Proc.Target.Value)
		assert.Equal(t, []byte(`version="1.0"`), got[0].Proc.Content.Value)
	}
}

func TestParserAutoCloseOnMismatch(t *testing.T) {
	got := collectEvents(EventCloseTag, func(p *Parser) {
		p.Write([]byte(`<a><b></a>`))
		p.End()
	})

	if assert.Len(t, got, 2) {
		assert.Equal(t, []byte("b"), got[0].Tag.Name)
		assert.Equal(t, []byte("a"), got[1].Tag.Name)
	}
}

func TestParserAutoCloseUnsubscribedTruncatesStack(t *testing.T) {
	got := collectEvents(EventOpenTag, func(p *Parser) {
		p.Write([]byte(`<a><b></a><c></c>`))
		p.End()
	})

	if assert.Len(t, got, 3) {
		names := []string{string(got[0].Tag.Name), string(got[1].Tag.Name), string(got[2].Tag.Name)}
		assert.Equal(t, []string{"a", "b", "c"}, names)
	}
}

func TestParserMismatchedCloseWithoutMatchIsLiteralText(t *testing.T) {
	got := collectEvents(EventText, func(p *Parser) {
		p.Write([]byte(`</nope>`))
		p.End()
	})

	if assert.Len(t, got, 1) {
		assert.Equal(t, []byte("</nope>"), got[0].Text.Value)
	}
}

func TestParserJSXFragment(t *testing.T) {
	got := collectEvents(EventOpenTag|EventCloseTag, func(p *Parser) {
		p.Write([]byte(`<><span></span></>`))
		p.End()
	})

	if assert.Len(t, got, 4) {
		assert.Equal(t, "", string(got[0].Tag.Name))
		assert.Equal(t, []byte("span"), got[1].Tag.Name)
		assert.Equal(t, []byte("span"), got[2].Tag.Name)
		assert.Equal(t, "", string(got[3].Tag.Name))
	}
}

func TestParserJSXExpressionAttribute(t *testing.T) {
	got := collectEvents(EventAttribute, func(p *Parser) {
		p.Write([]byte(`<x y={ {a: 1} }/>`))
		p.End()
	})

	if assert.Len(t, got, 1) {
		assert.Equal(t, AttrJSXExpression, got[0].Attr.Kind)
		assert.Equal(t, []byte(" {a: 1} "), got[0].Attr.Value.Value)
	}
}

func TestParserCdata(t *testing.T) {
	got := collectEvents(EventCdata, func(p *Parser) {
		p.Write([]byte(`<![CDATA[a]]b]]>`))
		p.End()
	})

	if assert.Len(t, got, 1) {
		assert.Equal(t, []byte("a]]b"), got[0].Text.Value)
	}
}

func TestParserDoctype(t *testing.T) {
	got := collectEvents(EventDoctype, func(p *Parser) {
		p.Write([]byte(`<!DOCTYPE html>`))
		p.End()
	})

	if assert.Len(t, got, 1) {
		// The "DOCTYPE" keyword itself is consumed by the state
		// transition, along with the single whitespace byte that
		// triggered it; only what follows accumulates into the body.
		assert.Equal(t, []byte("html"), got[0].Text.Value)
	}
}

func TestParserChunkingEquivalence(t *testing.T) {
	doc := []byte(`<a b="1"><c>text &amp; more</c></a>`)
	events := EventOpenTag | EventCloseTag | EventText | EventAttribute

	whole := collectEvents(events, func(p *Parser) {
		p.Write(doc)
		p.End()
	})

	var chunked []recordedEvent
	p := NewParser(func(event Event, data interface{}) {
		rec := recordedEvent{Event: event}
		switch v := data.(type) {
		case *Tag:
			cp := *v
			cp.Name = append([]byte(nil), v.Name...)
			cp.Attributes = append([]Attribute(nil), v.Attributes...)
			cp.TextNodes = append([]Text(nil), v.TextNodes...)
			rec.Tag = &cp
		case *Attribute:
			cp := *v
			rec.Attr = &cp
		case *Text:
			cp := *v
			cp.Value = append([]byte(nil), v.Value...)
			rec.Text = &cp
		}
		chunked = append(chunked, rec)
	})
	p.Events = events
	for i := 0; i < len(doc); i++ {
		p.Write(doc[i : i+1])
	}
	p.End()

	if diff := cmp.Diff(whole, chunked); diff != "" {
		t.Errorf("byte-at-a-time feed produced a different event sequence than a single Write (-whole +chunked):\n%s", diff)
	}
}

func TestParserBOMIsConsumedSilently(t *testing.T) {
	got := collectEvents(EventText, func(p *Parser) {
		p.Write(append(append([]byte{}, bomBytes...), []byte("hi")...))
		p.End()
	})

	if assert.Len(t, got, 1) {
		assert.Equal(t, []byte("hi"), got[0].Text.Value)
	}
}

func TestParserEndDiscardsUnterminatedComment(t *testing.T) {
	got := collectEvents(EventComment|EventText, func(p *Parser) {
		p.Write([]byte(`<!-- never closes`))
		p.End()
	})

	assert.Len(t, got, 0)
}

func TestParserSGMLDeclaration(t *testing.T) {
	got := collectEvents(EventSGMLDeclaration, func(p *Parser) {
		p.Write([]byte(`<!ENTITY foo "bar">`))
		p.End()
	})

	if assert.Len(t, got, 1) {
		assert.Equal(t, []byte(`ENTITY foo "bar">`), got[0].Text.Value)
	}
}
