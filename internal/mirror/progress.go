package mirror

// Progress moves a fraction from Start towards End in Total equal steps.
// The step size leaves one step of headroom so that End is only reached by
// Done, never by the last Next.
type Progress struct {
	Start  float64
	End    float64
	Total  int
	actual float64
	step   float64
}

// NewProgress returns a Progress at start.
func NewProgress(start, end float64, total int) *Progress {
	if total < 0 {
		total = 0
	}
	return &Progress{
		Start:  start,
		End:    end,
		Total:  total,
		actual: start,
		step:   (end - start) / float64(total+1),
	}
}

// Actual returns the current position.
func (p *Progress) Actual() float64 { return p.actual }

// Step returns the increment applied by Next.
func (p *Progress) Step() float64 { return p.step }

// Next advances one step and returns the new position.
func (p *Progress) Next() float64 {
	p.actual += p.step
	return p.actual
}

// Done jumps to End.
func (p *Progress) Done() float64 {
	p.actual = p.End
	return p.actual
}

// ProgressFunc receives progress updates: the fraction done (0..1) and a
// short description of the step just finished.
type ProgressFunc func(fraction float64, step string)
