package observe

import "github.com/marvelxcodes/asana-rl-gym/pkg/models"

// Summarize reduces an observation to the bounded form kept in step logs.
// Visual buffers are summarized by shape only; structured state is small and
// retained in full.
func Summarize(o Observation) models.ObservationSummary {
	s := models.ObservationSummary{Type: string(o.Mode)}
	if o.Visual != nil {
		s.VisualShape = []int{o.Visual.Height, o.Visual.Width, 3}
	}
	if o.Structured != nil {
		counts := o.Structured.TaskCounts
		projects := o.Structured.ProjectCount
		s.TaskCounts = &counts
		s.ProjectCount = &projects
		s.CurrentView = o.Structured.CurrentView.String()
		s.PageElements = append([]float32(nil), o.Structured.PageElements[:]...)
	}
	return s
}
