package tracing

// Span names.
const (
	SpanTransition = "transition"
	SpanMatch      = "transition.match"
	SpanPlan       = "transition.plan"
	SpanEmit       = "transition.emit"
	SpanHighlight  = "highlight"
	SpanExport     = "export.gif"
)

// Span attribute keys.
const (
	AttrPrevTokens   = "tokens.prev"
	AttrNextTokens   = "tokens.next"
	AttrMatchedByID  = "match.by_id"
	AttrMatchedByTxt = "match.by_text"
	AttrAdded        = "instructions.added"
	AttrRemoved      = "instructions.removed"
	AttrMoved        = "instructions.moved"
	AttrUnchanged    = "instructions.unchanged"
	AttrApproximate  = "instructions.approximate"
	AttrHasChanges   = "transition.has_changes"
	AttrDurationMs   = "transition.duration_ms"
	AttrLanguage     = "source.language"
	AttrSourceBytes  = "source.bytes"
	AttrCacheHit     = "cache.hit"
	AttrFrames       = "export.frames"
)
