package grid

// Carousel tracks which attached image is showing. It never wraps.
type Carousel struct {
	index int
}

// Index is the current image position; 0 when there are no images.
func (c *Carousel) Index() int { return c.index }

// Next moves forward, stopping at the last of n images.
func (c *Carousel) Next(n int) int {
	c.index = min(n-1, c.index+1)
	c.Clamp(n)
	return c.index
}

// Prev moves back, stopping at the first image.
func (c *Carousel) Prev(n int) int {
	c.index = max(0, c.index-1)
	c.Clamp(n)
	return c.index
}

// Clamp keeps the index within [0, n-1] after the image list changed.
func (c *Carousel) Clamp(n int) {
	switch {
	case n <= 0:
		c.index = 0
	case c.index >= n:
		c.index = n - 1
	case c.index < 0:
		c.index = 0
	}
}

// Reset returns to the first image.
func (c *Carousel) Reset() { c.index = 0 }
