package novelty

// Novel returns the labels present in current but absent from baseline.
// The result is empty exactly when current is a subset of baseline.
func Novel(current, baseline LabelSet) LabelSet {
	novel := NewLabelSet()
	for label := range current {
		if !baseline.Contains(label) {
			novel.Add(label)
		}
	}
	return novel
}
