package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"code.sajari.com/docconv"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/adapters/registry"
	"driverdesk/internal/core/domain"
)

// OCR service errors
var (
	ErrNoDocuments    = errors.New("driver has no uploaded documents to process")
	ErrExtractionFail = errors.New("document text extraction failed")
)

// OCRResult is the outcome of processing one driver's documents
type OCRResult struct {
	Type         domain.VerificationType `json:"verification_type"`
	NINScore     int                     `json:"nin_score"`
	LicenseScore int                     `json:"license_score"`
	Passed       bool                    `json:"passed"`
	Detail       string                  `json:"detail"`
}

// OCRService extracts text from uploaded identity documents and scores
// how well it matches the driver's declared NIN and license number.
// When an external registry gateway is configured it is consulted
// first; document text extraction is the fallback.
type OCRService struct {
	registryClient registry.Client
	passThreshold  int
}

// NewOCRService creates a new OCR service. registryClient may be nil
// when no gateway is configured.
func NewOCRService(registryClient registry.Client, passThreshold int) *OCRService {
	if passThreshold < 1 || passThreshold > 100 {
		passThreshold = 80
	}
	return &OCRService{
		registryClient: registryClient,
		passThreshold:  passThreshold,
	}
}

// PassThreshold returns the minimum score that counts as a pass
func (s *OCRService) PassThreshold() int {
	return s.passThreshold
}

// Process scores a driver's identity documents for the requested
// verification type. Every checked field must reach the pass threshold
// for the overall result to pass. Returns ErrNoDocuments when nothing
// is uploaded and the registry is unavailable.
func (s *OCRService) Process(ctx context.Context, driver *models.Driver, docs []*models.DriverDocument, vt domain.VerificationType) (*OCRResult, error) {
	if !vt.IsValid() {
		vt = domain.VerifyBoth
	}

	result := &OCRResult{Type: vt}

	if vt != domain.VerifyFRSC {
		score, err := s.scoreField(ctx, driver, docs, domain.VerifyNIN)
		if err != nil {
			return nil, err
		}
		result.NINScore = score
	}
	if vt != domain.VerifyNIN {
		score, err := s.scoreField(ctx, driver, docs, domain.VerifyFRSC)
		if err != nil {
			return nil, err
		}
		result.LicenseScore = score
	}

	ninOK := vt == domain.VerifyFRSC || result.NINScore >= s.passThreshold
	licOK := vt == domain.VerifyNIN || result.LicenseScore >= s.passThreshold
	result.Passed = ninOK && licOK

	switch {
	case result.Passed:
		result.Detail = "identity checks passed"
	case !ninOK && !licOK:
		result.Detail = "NIN and license checks below threshold"
	case !ninOK:
		result.Detail = "NIN check below threshold"
	default:
		result.Detail = "license check below threshold"
	}

	return result, nil
}

// scoreField resolves one identity field via the registry gateway or,
// failing that, via document text extraction.
func (s *OCRService) scoreField(ctx context.Context, driver *models.Driver, docs []*models.DriverDocument, vt domain.VerificationType) (int, error) {
	expected := driver.NIN
	docType := domain.DocNINSlip
	if vt == domain.VerifyFRSC {
		expected = driver.LicenseNumber
		docType = domain.DocDriversLicense
	}

	if s.registryClient != nil {
		res, err := s.queryRegistry(ctx, driver, vt)
		if err == nil {
			return res.Score, nil
		}
		if !errors.Is(err, registry.ErrUnavailable) {
			return 0, err
		}
		log.Printf("⚠️ Registry unavailable for driver %s, falling back to document OCR", driver.DriverCode)
	}

	doc := findDocument(docs, docType)
	if doc == nil {
		return 0, ErrNoDocuments
	}

	text, err := s.ExtractText(doc.FilePath)
	if err != nil {
		return 0, ErrExtractionFail
	}

	return ScoreMatch(expected, text), nil
}

func (s *OCRService) queryRegistry(ctx context.Context, driver *models.Driver, vt domain.VerificationType) (*registry.Result, error) {
	if vt == domain.VerifyFRSC {
		return s.registryClient.VerifyLicense(ctx, driver.LicenseNumber, driver.FullName)
	}
	return s.registryClient.VerifyNIN(ctx, driver.NIN, driver.FullName)
}

// ExtractText pulls plain text out of a stored document file
func (s *OCRService) ExtractText(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

func findDocument(docs []*models.DriverDocument, docType domain.DocType) *models.DriverDocument {
	// Last upload of a type wins
	for i := len(docs) - 1; i >= 0; i-- {
		if docs[i].DocType == string(docType) {
			return docs[i]
		}
	}
	return nil
}

// ScoreMatch rates how well an expected identifier appears in
// extracted document text, as a 0-100 score. An exact normalized
// substring hit is 100; otherwise the best windowed edit-distance
// similarity over the text decides.
func ScoreMatch(expected, extracted string) int {
	want := normalize(expected)
	have := normalize(extracted)
	if want == "" || have == "" {
		return 0
	}

	if strings.Contains(have, want) {
		return 100
	}

	best := 0
	n := len(want)
	for i := 0; i+n <= len(have); i++ {
		d := editDistance(want, have[i:i+n])
		score := (n - d) * 100 / n
		if score > best {
			best = score
		}
	}
	return best
}

// normalize strips everything but letters and digits and lowercases
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// editDistance is plain Levenshtein over ASCII-normalized strings
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
