package ticketchat

// Usage counts the tokens of one model call, or of a whole turn once
// summed with Add. Providers report cached prompt tokens in CacheReadTokens
// and CacheWriteTokens only, never in InputTokens, so the three input
// fields add up to the prompt size. Derived counts are clamped at zero.
type Usage struct {
	InputTokens      int
	OutputTokens     int
	CacheReadTokens  int
	CacheWriteTokens int
}

// Add returns the field-wise sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:      u.InputTokens + o.InputTokens,
		OutputTokens:     u.OutputTokens + o.OutputTokens,
		CacheReadTokens:  u.CacheReadTokens + o.CacheReadTokens,
		CacheWriteTokens: u.CacheWriteTokens + o.CacheWriteTokens,
	}
}
