// notation-eval 离线比对两份乐谱并打印逐音符诊断。
//
// 用法: notation-eval -reference ref.musicxml -student answer.mxl [-offset 2] [-tolerance 0.25] [-json]
//
// 参数也可以通过 NOTATION_EVAL_* 环境变量或当前目录的 .env 提供。
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"music_exam_backend/internal/grading"
	"music_exam_backend/internal/notation"
	"music_exam_backend/internal/util"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/peterbourgon/ff/v3"
	"github.com/pkg/errors"
)

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	reference string
	student   string
	offset    int
	tolerance float64
	asJSON    bool
	onlyDiff  bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("notation-eval", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.reference, "reference", "", "reference score (MusicXML or .mxl)")
	fs.StringVar(&o.student, "student", "", "student score (MusicXML or .mxl)")
	fs.IntVar(&o.offset, "offset", 0, "semitones to transpose the reference by before comparing")
	fs.Float64Var(&o.tolerance, "tolerance", notation.DefaultTolerance, "alignment window in beats")
	fs.BoolVar(&o.asJSON, "json", false, "print the raw evaluation result as JSON")
	fs.BoolVar(&o.onlyDiff, "diff", false, "only list notes that are not correct")

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("NOTATION_EVAL")); err != nil {
		return nil, err
	}
	if o.reference == "" || o.student == "" {
		return nil, errors.New("both -reference and -student are required")
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	ref, err := readScore(o.reference)
	if err != nil {
		color.New(color.FgRed).Fprintln(stderr, err)
		return 1
	}
	stu, err := readScore(o.student)
	if err != nil {
		color.New(color.FgRed).Fprintln(stderr, err)
		return 1
	}

	res := notation.Evaluate(ref, stu, o.offset, notation.WithTolerance(o.tolerance))

	if o.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	printReport(stdout, res, o)
	return 0
}

func readScore(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "open score")
	}
	if info.Size() > util.MaxNotationBytes {
		return nil, errors.Errorf("%s: file larger than %d bytes", path, util.MaxNotationBytes)
	}
	data, err := os.ReadFile(path)
	return data, errors.Wrapf(err, "read %s", path)
}

func printReport(w io.Writer, res notation.EvaluationResult, o *options) {
	color.New(color.FgCyan).Fprintf(w, "\n=== %s vs %s (offset %+d, tolerance %.2f) ===\n", o.reference, o.student, o.offset, o.tolerance)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Beat", "Expected", "Actual", "Result", "Notices"})
	table.SetAutoWrapText(false)
	for _, c := range res.Details {
		if o.onlyDiff && c.IsCorrect {
			continue
		}
		table.Append([]string{
			strconv.FormatFloat(c.Position, 'f', -1, 64),
			noteLabel(c.Expected),
			noteLabel(c.Actual),
			resultLabel(c),
			joinNotices(c.Notices),
		})
	}
	table.Render()

	summary := color.New(color.FgGreen)
	if res.Percentage < grading.PassPercentage {
		summary = color.New(color.FgYellow)
	}
	if res.Percentage < 50 {
		summary = color.New(color.FgRed)
	}
	summary.Fprintf(w, "Score: %d%%  (%d/%d correct, %d incorrect, %d missing, %d extra)\n",
		res.Percentage, res.CorrectNotes, res.TotalNotes, res.IncorrectNotes, res.MissingNotes, res.ExtraNotes)
}

func noteLabel(n *notation.NoteEvent) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s", n.Name(), n.Type)
}

func resultLabel(c notation.Comparison) string {
	if c.IsCorrect {
		return "ok"
	}
	return string(c.ErrorKind)
}

func joinNotices(kinds []notation.ErrorKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}
