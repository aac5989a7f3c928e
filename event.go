package sax

// Event is the stable event bitmask from spec.md §6: each bit both
// selects an event for subscription (Parser.Events) and tags the event
// delivered to an EventListener.
type Event uint32

const (
	EventText Event = 1 << iota
	EventProcessingInstruction
	EventSGMLDeclaration
	EventDoctype
	EventComment
	EventOpenTagStart
	EventAttribute
	EventOpenTag
	EventCloseTag
	EventCdata
)

// String renders the event name for logging/test failure messages.
func (e Event) String() string {
	switch e {
	case EventText:
		return "Text"
	case EventProcessingInstruction:
		return "ProcessingInstruction"
	case EventSGMLDeclaration:
		return "SGMLDeclaration"
	case EventDoctype:
		return "Doctype"
	case EventComment:
		return "Comment"
	case EventOpenTagStart:
		return "OpenTagStart"
	case EventAttribute:
		return "Attribute"
	case EventOpenTag:
		return "OpenTag"
	case EventCloseTag:
		return "CloseTag"
	case EventCdata:
		return "Cdata"
	default:
		return "Unknown"
	}
}

// EventListener receives synchronous, in-order, document-order events
// from a Parser's Write/End calls. data holds the concrete entity type
// for event (*Tag for OpenTagStart/OpenTag/CloseTag, *Attribute for
// Attribute, *Text for Text/Comment/Cdata/SGMLDeclaration/Doctype,
// *ProcInst for ProcessingInstruction). The listener must not retain
// data or any slice reachable from it past the call — see entity.go's
// Encode methods for a callback-safe, owned copy.
type EventListener func(event Event, data interface{})
