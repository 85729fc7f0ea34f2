package domsift

// Metric scores hard predictions against true labels. Larger is better.
type Metric func(yTrue, yPred []float64) float64

// F1 returns the harmonic mean of precision and recall for the content
// class. Returns 0 when precision and recall are both 0.
func F1(yTrue, yPred []float64) float64 {
	p := Precision(yTrue, yPred)
	r := Recall(yTrue, yPred)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Precision returns the fraction of predicted content blocks that are
// content. Returns 0 when nothing was predicted as content.
func Precision(yTrue, yPred []float64) float64 {
	tp, fp, _, _ := confusion(yTrue, yPred)
	if tp+fp == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fp)
}

// Recall returns the fraction of content blocks that were predicted as
// content. Returns 0 when no content blocks exist.
func Recall(yTrue, yPred []float64) float64 {
	tp, _, fn, _ := confusion(yTrue, yPred)
	if tp+fn == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fn)
}

// Accuracy returns the fraction of blocks labeled correctly.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	tp, fp, fn, tn := confusion(yTrue, yPred)
	return float64(tp+tn) / float64(tp+fp+fn+tn)
}

func confusion(yTrue, yPred []float64) (tp, fp, fn, tn int) {
	if len(yTrue) != len(yPred) {
		panic("domsift: label and prediction lengths differ")
	}
	for i := range yTrue {
		actual := yTrue[i] > 0.5
		predicted := yPred[i] > 0.5
		switch {
		case actual && predicted:
			tp++
		case !actual && predicted:
			fp++
		case actual && !predicted:
			fn++
		default:
			tn++
		}
	}
	return tp, fp, fn, tn
}

// MetricByName returns the named metric. Returns EINVALID for names
// other than f1, precision, recall or accuracy.
func MetricByName(name string) (Metric, error) {
	switch name {
	case "f1":
		return F1, nil
	case "precision":
		return Precision, nil
	case "recall":
		return Recall, nil
	case "accuracy":
		return Accuracy, nil
	default:
		return nil, Errorf(EINVALID, "unknown metric %q", name)
	}
}
