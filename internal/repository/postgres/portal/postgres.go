package portal

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	portaldomain "partner-portal/internal/domain/portal"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresRepository is the relational backing. It runs unchanged on SQLite;
// the sqlite dialector drops row locking clauses and the single connection
// serialises writers instead. The *gorm.DB must be opened with
// TranslateError so constraint violations map to domain errors.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type requestRow struct {
	ID                string    `gorm:"column:id"`
	PartnerID         string    `gorm:"column:partner_id"`
	PreferredContact  string    `gorm:"column:preferred_contact"`
	Urgency           string    `gorm:"column:urgency"`
	RequestType       string    `gorm:"column:request_type"`
	Description       string    `gorm:"column:description"`
	RecipientName     string    `gorm:"column:recipient_name"`
	RecipientAddress  string    `gorm:"column:recipient_address"`
	RecipientEmail    string    `gorm:"column:recipient_email"`
	RecipientPhone    string    `gorm:"column:recipient_phone"`
	DescriptionOfNeed string    `gorm:"column:description_of_need"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	PartnerName       *string   `gorm:"column:partner_name"`

	ReferringCaseManager string `gorm:"column:referring_case_manager"`
	CaseManagerEmail     string `gorm:"column:case_manager_email"`
	CaseManagerPhone     string `gorm:"column:case_manager_phone"`
}

func (row requestRow) toDomain() portaldomain.RequestWithPartner {
	result := portaldomain.RequestWithPartner{
		Request: portaldomain.Request{
			ID:                row.ID,
			PartnerID:         row.PartnerID,
			PreferredContact:  row.PreferredContact,
			Urgency:           row.Urgency,
			RequestType:       row.RequestType,
			Description:       row.Description,
			RecipientName:     row.RecipientName,
			RecipientAddress:  row.RecipientAddress,
			RecipientEmail:    row.RecipientEmail,
			RecipientPhone:    row.RecipientPhone,
			DescriptionOfNeed: row.DescriptionOfNeed,
			CreatedAt:         row.CreatedAt.UTC(),

			ReferringCaseManager: row.ReferringCaseManager,
			CaseManagerEmail:     row.CaseManagerEmail,
			CaseManagerPhone:     row.CaseManagerPhone,
		},
	}
	if row.PartnerName != nil {
		result.PartnerName = *row.PartnerName
	}
	return result
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(portaldomain.Repository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
	if err != nil && !isDomainError(err) {
		return storageError("transaction", err)
	}
	return err
}

func (r *PostgresRepository) GetPartner(ctx context.Context, id string) (*portaldomain.Partner, error) {
	return r.getPartner(r.db.WithContext(ctx), id)
}

func (r *PostgresRepository) GetPartnerForUpdate(ctx context.Context, id string) (*portaldomain.Partner, error) {
	return r.getPartner(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *PostgresRepository) getPartner(db *gorm.DB, id string) (*portaldomain.Partner, error) {
	var partner portaldomain.Partner
	if err := db.Where("id = ?", id).Take(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, portaldomain.ErrPartnerNotFound
		}
		return nil, storageError("get partner", err)
	}
	return &partner, nil
}

func (r *PostgresRepository) ListPartners(ctx context.Context) ([]portaldomain.Partner, error) {
	partners := make([]portaldomain.Partner, 0)
	if err := r.db.WithContext(ctx).Order("id asc").Find(&partners).Error; err != nil {
		return nil, storageError("list partners", err)
	}
	return partners, nil
}

func (r *PostgresRepository) CreatePartner(ctx context.Context, partner *portaldomain.Partner) error {
	err := r.db.WithContext(ctx).Create(partner).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return portaldomain.ErrPartnerExists
	}
	if err != nil {
		return storageError("create partner", err)
	}
	return nil
}

func (r *PostgresRepository) UpdatePartner(ctx context.Context, partner *portaldomain.Partner) error {
	result := r.db.WithContext(ctx).
		Model(&portaldomain.Partner{}).
		Where("id = ?", partner.ID).
		Updates(map[string]interface{}{
			"name":  partner.Name,
			"email": partner.Email,
			"phone": partner.Phone,
		})
	if result.Error != nil {
		return storageError("update partner", result.Error)
	}
	if result.RowsAffected == 0 {
		return portaldomain.ErrPartnerNotFound
	}
	return nil
}

// DeletePartner checks for referencing requests itself. The RESTRICT
// constraint still backs it up, but sqlite reports that failure untranslated.
func (r *PostgresRepository) DeletePartner(ctx context.Context, id string) (bool, error) {
	count, err := r.CountRequestsByPartner(ctx, id)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, portaldomain.ErrPartnerHasRequests
	}

	result := r.db.WithContext(ctx).Delete(&portaldomain.Partner{}, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
		return false, portaldomain.ErrPartnerHasRequests
	}
	if result.Error != nil {
		return false, storageError("delete partner", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) CountRequestsByPartner(ctx context.Context, partnerID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&portaldomain.Request{}).Where("partner_id = ?", partnerID).Count(&count).Error; err != nil {
		return 0, storageError("count requests", err)
	}
	return count, nil
}

func (r *PostgresRepository) requestsWithPartner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("requests").
		Select("requests.*, partners.name AS partner_name").
		Joins("left join partners on partners.id = requests.partner_id")
}

func (r *PostgresRepository) ListRequests(ctx context.Context) ([]portaldomain.RequestWithPartner, error) {
	var rows []requestRow
	if err := r.requestsWithPartner(ctx).
		Order("requests.created_at desc, requests.id asc").
		Scan(&rows).Error; err != nil {
		return nil, storageError("list requests", err)
	}

	requests := make([]portaldomain.RequestWithPartner, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, row.toDomain())
	}
	return requests, nil
}

func (r *PostgresRepository) GetRequest(ctx context.Context, id string) (*portaldomain.RequestWithPartner, error) {
	var rows []requestRow
	if err := r.requestsWithPartner(ctx).
		Where("requests.id = ?", id).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, storageError("get request", err)
	}
	if len(rows) == 0 {
		return nil, portaldomain.ErrRequestNotFound
	}
	request := rows[0].toDomain()
	return &request, nil
}

func (r *PostgresRepository) CreateRequest(ctx context.Context, request *portaldomain.Request) error {
	if err := r.requirePartner(ctx, request.PartnerID); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(request).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return portaldomain.ErrPartnerReferenceInvalid
	}
	if err != nil {
		return storageError("create request", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateRequest(ctx context.Context, request *portaldomain.Request) error {
	if err := r.requirePartner(ctx, request.PartnerID); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&portaldomain.Request{}).
		Where("id = ?", request.ID).
		Updates(map[string]interface{}{
			"partner_id":          request.PartnerID,
			"preferred_contact":   request.PreferredContact,
			"urgency":             request.Urgency,
			"request_type":        request.RequestType,
			"description":         request.Description,
			"recipient_name":      request.RecipientName,
			"recipient_address":   request.RecipientAddress,
			"recipient_email":     request.RecipientEmail,
			"recipient_phone":     request.RecipientPhone,
			"description_of_need": request.DescriptionOfNeed,

			"referring_case_manager": request.ReferringCaseManager,
			"case_manager_email":     request.CaseManagerEmail,
			"case_manager_phone":     request.CaseManagerPhone,
		})
	if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
		return portaldomain.ErrPartnerReferenceInvalid
	}
	if result.Error != nil {
		return storageError("update request", result.Error)
	}
	if result.RowsAffected == 0 {
		return portaldomain.ErrRequestNotFound
	}
	return nil
}

func (r *PostgresRepository) requirePartner(ctx context.Context, partnerID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&portaldomain.Partner{}).Where("id = ?", partnerID).Count(&count).Error; err != nil {
		return storageError("check partner", err)
	}
	if count == 0 {
		return portaldomain.ErrPartnerReferenceInvalid
	}
	return nil
}

func (r *PostgresRepository) DeleteRequest(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&portaldomain.Request{}, "id = ?", id)
	if result.Error != nil {
		return false, storageError("delete request", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func storageError(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, portaldomain.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, portaldomain.ErrStorageUnavailable) {
		return false
	}
	var netErr net.Error
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		portaldomain.ErrValidation,
		portaldomain.ErrPartnerNotFound,
		portaldomain.ErrPartnerExists,
		portaldomain.ErrPartnerHasRequests,
		portaldomain.ErrPartnerReferenceInvalid,
		portaldomain.ErrRequestNotFound,
		portaldomain.ErrStorageUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
