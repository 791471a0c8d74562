// Package extract reads identity fields from document photographs by
// running OCR over several crops and keeping the best-scoring parse.
package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"securekyc/internal/imageproc"
	"securekyc/internal/models"
	"securekyc/internal/ocr"
	"securekyc/internal/parser"
)

// ErrNoOCR marks a result where no region produced a candidate.
var ErrNoOCR = errors.New("no-ocr")

// DrivingLicenceScore is reported for full-text driving licence reads,
// which are not ranked.
const DrivingLicenceScore = 999

const snippetLen = 800

// Candidate is the parse of one region.
type Candidate struct {
	Label   string              `json:"roi"`
	BBox    [4]int              `json:"bbox"`
	Score   int                 `json:"score"`
	Fields  models.ParsedFields `json:"parsed"`
	Snippet string              `json:"text_snippet"`

	text string
}

// Result is the outcome of an extraction.
type Result struct {
	Fields   models.ParsedFields `json:"extracted_data"`
	RawText  string              `json:"raw_text"`
	Debug    []Candidate         `json:"debug"`
	Score    int                 `json:"score"`
	Source   string              `json:"source,omitempty"`
	NoResult bool                `json:"-"`
}

// Err returns ErrNoOCR for an explicit no-result.
func (r Result) Err() error {
	if r.NoResult {
		return ErrNoOCR
	}
	return nil
}

// Options tunes an Extractor.
type Options struct {
	// Workers bounds the region pipelines running at once across requests.
	Workers int
	// Timeout bounds one extraction. Regions still running are dropped.
	Timeout time.Duration
	// Preprocess replaces the default enhancement chain.
	Preprocess func(image.Image) image.Image
}

// Extractor owns the worker pool shared by all extractions.
type Extractor struct {
	ocr        *ocr.Invoker
	pool       *ants.Pool
	timeout    time.Duration
	preprocess func(image.Image) image.Image
	log        *zap.Logger
}

// New builds an Extractor. Call Close to release its workers.
func New(inv *ocr.Invoker, opts Options, log *zap.Logger) (*Extractor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	pre := opts.Preprocess
	if pre == nil {
		p := imageproc.NewPreprocessor(log)
		pre = func(img image.Image) image.Image { return p.Run(img) }
	}
	return &Extractor{
		ocr:        inv,
		pool:       pool,
		timeout:    opts.Timeout,
		preprocess: pre,
		log:        log.Named("extract"),
	}, nil
}

// Close stops the worker pool.
func (e *Extractor) Close() {
	e.pool.Release()
}

// Extract decodes data and reads fields for doc. Driving licences take the
// full-text path. Only undecodable input is an error; a read with no usable
// region is reported through Result.NoResult.
func (e *Extractor) Extract(ctx context.Context, doc models.DocType, data []byte) (Result, error) {
	if doc == models.DocDrivingLicence {
		return e.ExtractDrivingLicence(ctx, data)
	}
	parse := parser.For(doc)
	if parse == nil {
		return Result{}, fmt.Errorf("unsupported document type %q", doc)
	}
	img, err := imageproc.Decode(data)
	if err != nil {
		return Result{}, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cands := e.runRegions(ctx, img, doc, parse)
	return selectBest(doc, cands), nil
}

// runRegions evaluates every region on the pool. The returned slice is
// indexed like regions; nil marks a region that failed or missed the
// deadline. Scheduling runs apart from the wait so a saturated pool cannot
// hold the caller past ctx.
func (e *Extractor) runRegions(ctx context.Context, img image.Image, doc models.DocType, parse parser.Func) []*Candidate {
	var (
		mu     sync.Mutex
		closed bool
		wg     sync.WaitGroup
	)
	results := make([]*Candidate, len(regions))

	scheduled := make(chan struct{})
	go func() {
		defer close(scheduled)
		for i, reg := range regions {
			if ctx.Err() != nil {
				e.log.Warn("extraction deadline reached before scheduling", zap.String("roi", reg.label))
				return
			}
			wg.Add(1)
			err := e.pool.Submit(func() {
				defer wg.Done()
				c, err := e.runRegion(ctx, img, reg, doc, parse)
				if err != nil {
					e.log.Warn("region failed", zap.String("roi", reg.label), zap.Error(err))
					return
				}
				mu.Lock()
				if !closed {
					results[i] = &c
				}
				mu.Unlock()
			})
			if err != nil {
				wg.Done()
				e.log.Warn("region not scheduled", zap.String("roi", reg.label), zap.Error(err))
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		<-scheduled
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		e.log.Warn("extraction deadline reached, dropping unfinished regions", zap.Error(ctx.Err()))
	}

	mu.Lock()
	closed = true
	out := make([]*Candidate, len(results))
	copy(out, results)
	mu.Unlock()
	return out
}

func (e *Extractor) runRegion(ctx context.Context, img image.Image, reg region, doc models.DocType, parse parser.Func) (c Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	b := img.Bounds()
	box := reg.box(b.Dx(), b.Dy()).Add(b.Min)
	pre := e.preprocess(imageproc.Crop(img, box))
	png, err := imageproc.EncodePNG(pre)
	if err != nil {
		return Candidate{}, err
	}

	txt := e.ocr.Text(ctx, png, ocr.LangFor(doc))
	if err := ctx.Err(); err != nil {
		return Candidate{}, fmt.Errorf("ocr interrupted: %w", err)
	}
	fields := parse(txt)
	return Candidate{
		Label:   reg.label,
		BBox:    [4]int{box.Min.X, box.Min.Y, box.Max.X, box.Max.Y},
		Score:   Score(doc, fields, txt),
		Fields:  fields,
		Snippet: truncate(txt, snippetLen),
		text:    txt,
	}, nil
}

// selectBest picks the highest score, keeping the earliest region on ties,
// then fills critical fields the winner lacks from the earliest region that
// has them. Filled fields never replace a value the winner found.
func selectBest(doc models.DocType, cands []*Candidate) Result {
	debug := make([]Candidate, 0, len(cands))
	best := -1
	for i, c := range cands {
		if c == nil {
			continue
		}
		debug = append(debug, *c)
		if best < 0 || c.Score > cands[best].Score {
			best = i
		}
	}

	if best < 0 {
		return Result{
			Fields:   models.ParsedFields{DocType: doc, Error: ErrNoOCR.Error()},
			Debug:    debug,
			Score:    -1,
			NoResult: true,
		}
	}

	winner := cands[best]
	fields := winner.Fields.Clone()
	for _, f := range criticalFields[doc] {
		if fields.Has(f) {
			continue
		}
		for _, c := range cands {
			if c != nil && c.Fields.Has(f) {
				v := *c.Fields.Get(f)
				fields.Set(f, &v)
				break
			}
		}
	}

	return Result{
		Fields:  fields,
		RawText: winner.text,
		Debug:   debug,
		Score:   winner.Score,
		Source:  winner.Label,
	}
}

// ExtractDrivingLicence reads the whole licence twice, enhanced and as
// uploaded, and parses whichever text is longer. The enhanced read wins
// ties.
func (e *Extractor) ExtractDrivingLicence(ctx context.Context, data []byte) (Result, error) {
	img, err := imageproc.Decode(data)
	if err != nil {
		return Result{}, err
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	lang := ocr.LangFor(models.DocDrivingLicence)
	read := func(img image.Image) string {
		png, err := imageproc.EncodePNG(img)
		if err != nil {
			e.log.Warn("encode licence image", zap.Error(err))
			return ""
		}
		return e.ocr.Text(ctx, png, lang)
	}

	var enhanced string
	func() {
		defer func() {
			if r := recover(); r != nil {
				e.log.Warn("licence preprocessing failed", zap.Any("panic", r))
			}
		}()
		enhanced = read(e.preprocess(img))
	}()
	original := read(img)

	txt, source := enhanced, "preprocessed"
	if utf8.RuneCountInString(original) > utf8.RuneCountInString(enhanced) {
		txt, source = original, "original"
	}

	return Result{
		Fields:  parser.ParseDrivingLicence(txt),
		RawText: txt,
		Debug:   []Candidate{},
		Score:   DrivingLicenceScore,
		Source:  source,
	}, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
