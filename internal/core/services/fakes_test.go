package services

import (
	"context"
	"sync"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/adapters/persistence/repositories"
	"driverdesk/internal/adapters/registry"
	"driverdesk/internal/core/domain"

	"gorm.io/gorm"
)

// fakeDriverRepo is an in-memory DriverRepository for service tests
type fakeDriverRepo struct {
	mu      sync.Mutex
	drivers map[uint]*models.Driver
	nextID  uint
	failAll bool

	updateCalls int
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{
		drivers: make(map[uint]*models.Driver),
		nextID:  1,
	}
}

func (r *fakeDriverRepo) add(d *models.Driver) *models.Driver {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == 0 {
		d.ID = r.nextID
		r.nextID++
	}
	clone := *d
	r.drivers[clone.ID] = &clone
	return d
}

func (r *fakeDriverRepo) Create(ctx context.Context, driver *models.Driver) error {
	if r.failAll {
		return gorm.ErrInvalidDB
	}
	r.add(driver)
	return nil
}

func (r *fakeDriverRepo) GetByID(ctx context.Context, id uint) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, gorm.ErrInvalidDB
	}
	d, ok := r.drivers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *fakeDriverRepo) GetByCode(ctx context.Context, code string) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.drivers {
		if d.DriverCode == code {
			clone := *d
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDriverRepo) Update(ctx context.Context, driver *models.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *driver
	r.drivers[clone.ID] = &clone
	return nil
}

func (r *fakeDriverRepo) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return gorm.ErrInvalidDB
	}
	d, ok := r.drivers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.updateCalls++
	applyDriverUpdates(d, updates)
	return nil
}

func (r *fakeDriverRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drivers, id)
	return nil
}

func (r *fakeDriverRepo) List(ctx context.Context, filter repositories.DriverFilter, offset, limit int) ([]*models.Driver, int64, error) {
	all, _ := r.ListAll(ctx)
	return all, int64(len(all)), nil
}

func (r *fakeDriverRepo) ListAll(ctx context.Context) ([]*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, gorm.ErrInvalidDB
	}
	result := make([]*models.Driver, 0, len(r.drivers))
	for id := uint(1); id < r.nextID; id++ {
		if d, ok := r.drivers[id]; ok {
			clone := *d
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *fakeDriverRepo) NextDriverCode(ctx context.Context) (string, error) {
	return "DRV-9999", nil
}

func (r *fakeDriverRepo) CountByVerificationStatus(ctx context.Context) (map[domain.VerificationStatus]int64, error) {
	return map[domain.VerificationStatus]int64{}, nil
}

func (r *fakeDriverRepo) OCRStats(ctx context.Context) (*models.OCRStats, error) {
	return &models.OCRStats{}, nil
}

func (r *fakeDriverRepo) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.drivers {
		if d.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func applyDriverUpdates(d *models.Driver, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "verification_status":
			d.VerificationStatus = value.(string)
		case "status":
			d.Status = value.(string)
		case "rejection_reason":
			if s, ok := value.(string); ok {
				d.RejectionReason = s
			}
		case "full_name":
			d.FullName = value.(string)
		case "phone":
			d.Phone = value.(string)
		}
	}
}

// fakeDocRepo is an in-memory DocumentRepository
type fakeDocRepo struct {
	mu   sync.Mutex
	docs []*models.DriverDocument
}

func (r *fakeDocRepo) Create(ctx context.Context, doc *models.DriverDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.ID = uint(len(r.docs) + 1)
	r.docs = append(r.docs, doc)
	return nil
}

func (r *fakeDocRepo) GetByDocID(ctx context.Context, docID string) (*models.DriverDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.DocID == docID {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDocRepo) ListByDriver(ctx context.Context, driverID uint) ([]*models.DriverDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.DriverDocument
	for _, d := range r.docs {
		if d.DriverID == driverID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (r *fakeDocRepo) ListByDriverAndType(ctx context.Context, driverID uint, docType domain.DocType) ([]*models.DriverDocument, error) {
	all, _ := r.ListByDriver(ctx, driverID)
	var result []*models.DriverDocument
	for _, d := range all {
		if d.DocType == string(docType) {
			result = append(result, d)
		}
	}
	return result, nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.docs {
		if d.ID == id {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeLogRepo is an in-memory VerificationLogRepository
type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*models.VerificationLog
}

func (r *fakeLogRepo) Create(ctx context.Context, entry *models.VerificationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLogRepo) ListByDriver(ctx context.Context, driverID uint) ([]*models.VerificationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.VerificationLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].DriverID == driverID {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}

func (r *fakeLogRepo) byAction(action string) []*models.VerificationLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.VerificationLog
	for _, e := range r.entries {
		if e.Action == action {
			result = append(result, e)
		}
	}
	return result
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uint(len(r.users) + 1)
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.User
	for _, u := range r.users {
		result = append(result, u)
	}
	return result, int64(len(result)), nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

// fakeRegistry scripts per-NIN registry outcomes for OCR tests
type fakeRegistry struct {
	scores map[string]int
	errs   map[string]error
}

func (f *fakeRegistry) VerifyNIN(ctx context.Context, nin, fullName string) (*registry.Result, error) {
	return f.lookup(nin)
}

func (f *fakeRegistry) VerifyLicense(ctx context.Context, license, fullName string) (*registry.Result, error) {
	return f.lookup(license)
}

func (f *fakeRegistry) lookup(key string) (*registry.Result, error) {
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	score, ok := f.scores[key]
	if !ok {
		score = 0
	}
	return &registry.Result{Matched: score >= 80, Score: score}, nil
}

// pendingDriver builds a pending driver fixture
func pendingDriver(name, nin, license string) *models.Driver {
	return &models.Driver{
		FullName:           name,
		Phone:              "080" + nin[:8],
		NIN:                nin,
		LicenseNumber:      license,
		Status:             string(domain.DriverActive),
		VerificationStatus: string(domain.VerificationPending),
	}
}

// newTestVerification wires a verification service over fakes
func newTestVerification(driverRepo *fakeDriverRepo, reg registry.Client) (*VerificationService, *fakeLogRepo, *NotificationService, *DriverCacheService) {
	docRepo := &fakeDocRepo{}
	logRepo := &fakeLogRepo{}
	userRepo := newFakeUserRepo()
	cache := NewDriverCacheService(driverRepo)
	cache.Load(context.Background())
	notifier := NewNotificationService()
	ocr := NewOCRService(reg, 80)

	svc := NewVerificationService(driverRepo, docRepo, logRepo, userRepo, cache, notifier, ocr, 0)
	return svc, logRepo, notifier, cache
}
