package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/scoring"
)

type stubExtractor struct {
	pages map[string][]string
	calls []string
}

func (s *stubExtractor) ExtractPages(filename string, _ []byte) []string {
	s.calls = append(s.calls, filename)
	return s.pages[filename]
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     DocumentKind
	}{
		{name: "pdf extension", filename: "cv.PDF", want: KindPDF},
		{name: "docx extension", filename: "cv.docx", want: KindDOCX},
		{name: "text extension", filename: "cv.txt", want: KindText},
		{name: "pdf magic", filename: "upload", data: []byte("%PDF-1.7\n"), want: KindPDF},
		{name: "zip magic", filename: "upload", data: []byte("PK\x03\x04rest"), want: KindDOCX},
		{name: "unknown", filename: "upload", data: []byte("plain words"), want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.filename, tt.data))
		})
	}
}

func TestExtractPages(t *testing.T) {
	e := NewTextExtractor(zap.NewNop())

	t.Run("plain text is one page", func(t *testing.T) {
		assert.Equal(t, []string{"Python developer"}, e.ExtractPages("cv.txt", []byte("Python developer")))
	})

	t.Run("invalid utf8 replaced", func(t *testing.T) {
		got := e.ExtractPages("cv.txt", []byte("sql \xff done"))
		require.Len(t, got, 1)
		assert.Equal(t, "sql � done", got[0])
	})

	t.Run("empty document yields no pages", func(t *testing.T) {
		assert.Empty(t, e.ExtractPages("cv.pdf", nil))
	})

	t.Run("corrupt pdf yields no pages", func(t *testing.T) {
		assert.Empty(t, e.ExtractPages("cv.pdf", []byte("%PDF-1.4 truncated garbage")))
	})

	t.Run("corrupt docx yields no pages", func(t *testing.T) {
		assert.Empty(t, e.ExtractPages("cv.docx", []byte("not a zip archive")))
	})
}

// buildPDF writes a minimal PDF with one Helvetica text line per page.
func buildPDF(t *testing.T, lines ...string) []byte {
	t.Helper()

	pageCount := len(lines)
	var objects []string
	kids := make([]string, pageCount)
	for i := range lines {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pageCount),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	for i, line := range lines {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", line)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	buf := new(bytes.Buffer)
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// buildDOCX zips a word document whose body holds one paragraph per entry.
func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>")
	}

	parts := []struct{ name, content string }{
		{"[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`},
		{"word/_rels/document.xml.rels", `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
		{"word/document.xml", `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body.String() + `</w:body></w:document>`},
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, part := range parts {
		w, err := zw.Create(part.name)
		require.NoError(t, err)
		_, err = io.WriteString(w, part.content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractPagesDocuments(t *testing.T) {
	e := NewTextExtractor(zap.NewNop())

	t.Run("pdf single page", func(t *testing.T) {
		pages := e.ExtractPages("cv.pdf", buildPDF(t, "Python SQL Education"))
		require.Len(t, pages, 1)
		assert.Contains(t, pages[0], "Python SQL Education")
	})

	t.Run("pdf one entry per page", func(t *testing.T) {
		pages := e.ExtractPages("cv.pdf", buildPDF(t, "Experience", "Certifications"))
		require.Len(t, pages, 2)
		assert.Contains(t, pages[0], "Experience")
		assert.Contains(t, pages[1], "Certifications")
	})

	t.Run("pdf detected by content", func(t *testing.T) {
		pages := e.ExtractPages("upload", buildPDF(t, "Golang"))
		require.Len(t, pages, 1)
		assert.Contains(t, pages[0], "Golang")
	})

	t.Run("docx paragraphs", func(t *testing.T) {
		pages := e.ExtractPages("cv.docx", buildDOCX(t, "Python &amp; SQL", "Education"))
		assert.Equal(t, []string{"Python & SQL\nEducation\n"}, pages)
	})

	t.Run("docx detected by content", func(t *testing.T) {
		pages := e.ExtractPages("upload", buildDOCX(t, "Skills"))
		assert.Equal(t, []string{"Skills\n"}, pages)
	})
}

func TestScreeningServiceDocuments(t *testing.T) {
	svc := NewScreeningService(NewTextExtractor(zap.NewNop()), scoring.NewDefaultScorer(scoring.Options{}), zap.NewNop())

	a, err := svc.Analyze(context.Background(), "python sql", []UploadedDocument{
		{Filename: "pdf.pdf", Data: buildPDF(t, "Education Python SQL")},
		{Filename: "word.docx", Data: buildDOCX(t, "Skills", "Python &amp; SQL")},
		{Filename: "none.txt", Data: []byte("kotlin")},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"python", "sql"}, a.Results[0].Skills)
	assert.Equal(t, []string{"python", "sql"}, a.Results[1].Skills)
	assert.Equal(t, "skills\npython  sql\n", a.Results[1].NormalizedText)
	assert.Equal(t, 1, a.Results[2].FitScore)
	assert.Equal(t, "none.txt", a.Ranking[2].Filename)
}

func TestJoinPages(t *testing.T) {
	assert.Equal(t, "page onepage two", JoinPages([]string{"page one", "", "page two"}))
	assert.Equal(t, "", JoinPages(nil))
}

func TestScreeningServiceValidation(t *testing.T) {
	extractor := &stubExtractor{}
	svc := NewScreeningService(extractor, scoring.NewDefaultScorer(scoring.Options{}), zap.NewNop())
	docs := []UploadedDocument{{Filename: "cv.txt", Data: []byte("python")}}

	_, err := svc.Analyze(context.Background(), "   \n", docs, nil)
	assert.ErrorIs(t, err, ErrMissingJobDescription)

	_, err = svc.Analyze(context.Background(), "python", nil, nil)
	assert.ErrorIs(t, err, ErrNoDocumentsProvided)

	assert.Empty(t, extractor.calls, "extraction must not run on invalid input")
}

func TestScreeningServiceAnalyze(t *testing.T) {
	extractor := &stubExtractor{pages: map[string][]string{
		"strong.pdf": {"Education Skills Experience ", "Python SQL"},
		"empty.pdf":  {"", ""},
		"weak.pdf":   {"Java Kotlin"},
	}}
	svc := NewScreeningService(extractor, scoring.NewDefaultScorer(scoring.Options{}), zap.NewNop())

	docs := []UploadedDocument{
		{Filename: "weak.pdf"},
		{Filename: "empty.pdf"},
		{Filename: "strong.pdf"},
	}

	var progress [][2]int
	analysis, err := svc.Analyze(context.Background(), "Python, SQL, data analysis", docs, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"weak.pdf", "empty.pdf", "strong.pdf"}, extractor.calls)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)

	require.Len(t, analysis.Results, 3)
	assert.Equal(t, "Education Skills Experience Python SQL", analysis.Results[2].RawText)
	assert.Equal(t, "", analysis.Results[1].NormalizedText)
	assert.Equal(t, 1, analysis.Results[1].ATSScore)
	assert.Equal(t, 1, analysis.Results[1].FitScore)

	require.Len(t, analysis.Ranking, 3)
	assert.Equal(t, "strong.pdf", analysis.Ranking[0].Filename)
	assert.Equal(t, "weak.pdf", analysis.Ranking[1].Filename)
	assert.Equal(t, "empty.pdf", analysis.Ranking[2].Filename)
}

func TestScreeningServiceCancelled(t *testing.T) {
	svc := NewScreeningService(&stubExtractor{}, scoring.NewDefaultScorer(scoring.Options{}), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, "python", []UploadedDocument{{Filename: "cv.txt"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func multipartHeaders(t *testing.T, files map[string]string, order []string) []*multipart.FileHeader {
	t.Helper()

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for _, name := range order {
		part, err := w.CreateFormFile("resumes", name)
		require.NoError(t, err)
		_, err = io.WriteString(part, files[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["resumes"]
}

func TestStorageServiceReadFiles(t *testing.T) {
	files := map[string]string{"b.txt": "python", "a.txt": "sql"}
	headers := multipartHeaders(t, files, []string{"b.txt", "a.txt"})

	docs, err := NewStorageService(1024).ReadFiles(headers)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, UploadedDocument{Filename: "b.txt", Data: []byte("python")}, docs[0])
	assert.Equal(t, UploadedDocument{Filename: "a.txt", Data: []byte("sql")}, docs[1])
}

func TestStorageServiceRejects(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		headers := multipartHeaders(t, map[string]string{"cv.exe": "x"}, []string{"cv.exe"})
		_, err := NewStorageService(1024).ReadFiles(headers)
		assert.ErrorIs(t, err, ErrUnsupportedDocument)
	})

	t.Run("too large", func(t *testing.T) {
		headers := multipartHeaders(t, map[string]string{"cv.txt": strings.Repeat("x", 64)}, []string{"cv.txt"})
		_, err := NewStorageService(10).ReadFiles(headers)
		assert.ErrorIs(t, err, ErrDocumentTooLarge)
	})
}

func TestValidateDocument(t *testing.T) {
	assert.NoError(t, ValidateDocument(UploadedDocument{Filename: "cv.PDF", Data: []byte("%PDF-")}, 10))
	assert.NoError(t, ValidateDocument(UploadedDocument{Filename: "cv.txt", Data: make([]byte, 64)}, 0))
	assert.ErrorIs(t, ValidateDocument(UploadedDocument{Filename: "cv.txt", Data: make([]byte, 64)}, 10), ErrDocumentTooLarge)
	assert.ErrorIs(t, ValidateDocument(UploadedDocument{Filename: "cv"}, 10), ErrUnsupportedDocument)
}

type stubObjectGetter struct {
	objects map[string]string
	err     error
}

func (s *stubObjectGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	body, ok := s.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

type sizedObjectGetter struct {
	body   io.Reader
	length *int64
}

func (s *sizedObjectGetter) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(s.body), ContentLength: s.length}, nil
}

func TestS3DocumentSourceSizeLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("declared length rejected before reading", func(t *testing.T) {
		src := &s3DocumentSource{
			client:        &sizedObjectGetter{body: iotest.ErrReader(errors.New("body must not be read")), length: aws.Int64(1 << 30)},
			maxObjectSize: 1024,
		}
		_, err := src.Load(ctx, "s3://bucket/huge.pdf")
		assert.ErrorIs(t, err, ErrDocumentTooLarge)
	})

	t.Run("undeclared length stops one byte past the limit", func(t *testing.T) {
		body := strings.NewReader(strings.Repeat("x", 64))
		src := &s3DocumentSource{client: &sizedObjectGetter{body: body}, maxObjectSize: 10}
		_, err := src.Load(ctx, "s3://bucket/cv.txt")
		assert.ErrorIs(t, err, ErrDocumentTooLarge)
		assert.Equal(t, 64-11, body.Len())
	})

	t.Run("object at the limit", func(t *testing.T) {
		src := &s3DocumentSource{
			client:        &sizedObjectGetter{body: strings.NewReader("0123456789"), length: aws.Int64(10)},
			maxObjectSize: 10,
		}
		doc, err := src.Load(ctx, "s3://bucket/cv.txt")
		require.NoError(t, err)
		assert.Equal(t, "0123456789", string(doc.Data))
	})
}

func TestParseS3Location(t *testing.T) {
	bucket, key, err := ParseS3Location("s3://resumes/2024/jane.pdf")
	require.NoError(t, err)
	assert.Equal(t, "resumes", bucket)
	assert.Equal(t, "2024/jane.pdf", key)

	for _, bad := range []string{"resumes/jane.pdf", "s3://resumes", "s3:///jane.pdf", "http://host/key"} {
		_, _, err := ParseS3Location(bad)
		assert.Error(t, err, bad)
	}
}

func TestMultiSource(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "local.txt")
	require.NoError(t, os.WriteFile(local, []byte("golang"), 0o644))

	getter := &stubObjectGetter{objects: map[string]string{"bucket/cv/remote.txt": "python"}}
	builds := 0
	src := &MultiSource{
		Files: NewFileDocumentSource(),
		S3: func(context.Context) (DocumentSource, error) {
			builds++
			return &s3DocumentSource{client: getter}, nil
		},
	}

	ctx := context.Background()
	doc, err := src.Load(ctx, local)
	require.NoError(t, err)
	assert.Equal(t, UploadedDocument{Filename: "local.txt", Data: []byte("golang")}, doc)

	doc, err = src.Load(ctx, "s3://bucket/cv/remote.txt")
	require.NoError(t, err)
	assert.Equal(t, UploadedDocument{Filename: "remote.txt", Data: []byte("python")}, doc)

	_, err = src.Load(ctx, "s3://bucket/missing.txt")
	assert.Error(t, err)
	assert.Equal(t, 1, builds)

	_, err = src.Load(ctx, filepath.Join(dir, "absent.txt"))
	assert.Error(t, err)
}
