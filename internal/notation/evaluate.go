package notation

// Option 评测参数
type Option func(*options)

type options struct {
	tolerance float64
}

// WithTolerance overrides the alignment window in beats. Non-positive values are ignored.
func WithTolerance(beats float64) Option {
	return func(o *options) {
		if beats > 0 {
			o.tolerance = beats
		}
	}
}

// Evaluate 对比参考乐谱与学生乐谱：解析 -> 移调参考谱 -> 对齐 -> 判定 -> 汇总。
// 不依赖存储或数据库，任何输入都能得到结果。
func Evaluate(referenceDoc, studentDoc []byte, semitoneOffset int, opts ...Option) EvaluationResult {
	o := options{tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&o)
	}

	expected := Transpose(Parse(referenceDoc), semitoneOffset)
	actual := Parse(studentDoc)
	return Aggregate(len(expected), Align(expected, actual, o.tolerance))
}
