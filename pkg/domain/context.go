package domain

// Context is the per-unit execution state touched by the allocation path.
// Each scheduling unit owns exactly one Context and is the only mutator of
// it; nothing here is shared, which is why the allocation path needs no
// locks. YoungPtr grows downward: an allocation subtracts its size, and the
// fast path fails once the cursor would cross YoungLimit.
type Context struct {
	Stack      *Stack // word stack; top holds the triggering return address
	YoungPtr   int    // bump-allocation cursor, in words
	YoungLimit int    // low bound of the young region, in words
}

// NewContext creates a Context whose young region spans (limit, top].
func NewContext(top, limit int) *Context {
	return &Context{
		Stack:      NewStack(),
		YoungPtr:   top,
		YoungLimit: limit,
	}
}

// Headroom returns the number of words available above the limit.
func (c *Context) Headroom() int {
	return c.YoungPtr - c.YoungLimit
}
