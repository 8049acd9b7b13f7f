package apptest

import (
	"sort"

	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Notificaciones: vista reciente y archivo
// ──────────────────────────────────────────────────────────────────────────────

var _ repository.RecentNotificationRepository = (*RecentNotificationRepo)(nil)
var _ repository.ArchivedNotificationRepository = (*ArchivedNotificationRepo)(nil)

// NewNotificationStores construye las dos proyecciones en memoria ya
// vinculadas: el archivo conoce la vista reciente para el barrido MissingIDs.
func NewNotificationStores() (*RecentNotificationRepo, *ArchivedNotificationRepo) {
	recent := &RecentNotificationRepo{
		Rows: make(map[string]*entity.Notification),
		seq:  make(map[string]int),
	}
	archive := &ArchivedNotificationRepo{
		Rows:   make(map[string]*entity.ArchivedNotification),
		seq:    make(map[string]int),
		recent: recent,
	}
	return recent, archive
}

// RecentNotificationRepo feed reciente en memoria. El orden de inserción hace
// de "más nuevo primero"; CreateErr fuerza la falla de la escritura.
type RecentNotificationRepo struct {
	Rows      map[string]*entity.Notification
	seq       map[string]int
	next      int
	CreateErr error
}

func (r *RecentNotificationRepo) Create(n *entity.Notification) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	cp := *n
	r.Rows[n.ID] = &cp
	r.next++
	r.seq[n.ID] = r.next
	return nil
}

func (r *RecentNotificationRepo) GetByID(id string) (*entity.Notification, error) {
	n, ok := r.Rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *RecentNotificationRepo) List(companyID string, f repository.NotificationFilter) ([]*entity.Notification, int, error) {
	var out []*entity.Notification
	for _, n := range r.Rows {
		if !matchNotification(n, companyID, f) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return r.seq[out[i].ID] > r.seq[out[j].ID] })
	total := len(out)
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *RecentNotificationRepo) ListReadIDs(companyID string) ([]string, error) {
	var ids []string
	for _, n := range r.Rows {
		if n.CompanyID == companyID && n.Read {
			ids = append(ids, n.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *RecentNotificationRepo) ListUnreadIDs(companyID string) ([]string, error) {
	var ids []string
	for _, n := range r.Rows {
		if n.CompanyID == companyID && !n.Read {
			ids = append(ids, n.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *RecentNotificationRepo) ListUnreadIDsByRelated(companyID, relatedID string, kinds []string) ([]string, error) {
	var ids []string
	for _, n := range r.Rows {
		if n.CompanyID == companyID && !n.Read && n.RelatedID == relatedID && containsKind(kinds, n.Kind) {
			ids = append(ids, n.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *RecentNotificationRepo) ExistsUnread(companyID, kind, relatedID string) (bool, error) {
	for _, n := range r.Rows {
		if n.CompanyID == companyID && n.Kind == kind && n.RelatedID == relatedID && !n.Read {
			return true, nil
		}
	}
	return false, nil
}

func (r *RecentNotificationRepo) MarkRead(id string) error {
	n, ok := r.Rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Read = true
	return nil
}

func (r *RecentNotificationRepo) Delete(id string) error {
	if _, ok := r.Rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.Rows, id)
	return nil
}

// ArchivedNotificationRepo archivo en memoria.
type ArchivedNotificationRepo struct {
	Rows      map[string]*entity.ArchivedNotification
	seq       map[string]int
	next      int
	recent    *RecentNotificationRepo
	CreateErr error
}

func (r *ArchivedNotificationRepo) Create(n *entity.ArchivedNotification) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	cp := *n
	r.Rows[n.ID] = &cp
	r.next++
	r.seq[n.ID] = r.next
	return nil
}

func (r *ArchivedNotificationRepo) GetByID(id string) (*entity.ArchivedNotification, error) {
	n, ok := r.Rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *ArchivedNotificationRepo) List(companyID string, f repository.NotificationFilter) ([]*entity.ArchivedNotification, int, error) {
	var out []*entity.ArchivedNotification
	for _, n := range r.Rows {
		if !matchNotification(&n.Notification, companyID, f) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return r.seq[out[i].ID] > r.seq[out[j].ID] })
	total := len(out)
	if f.Offset > 0 {
		if f.Offset > len(out) {
			out = nil
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *ArchivedNotificationRepo) ListReadIDs(companyID string) ([]string, error) {
	var ids []string
	for _, n := range r.Rows {
		if n.CompanyID == companyID && n.Read {
			ids = append(ids, n.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *ArchivedNotificationRepo) ListUnreadIDsByRelated(companyID, relatedID string, kinds []string) ([]string, error) {
	var ids []string
	for _, n := range r.Rows {
		if n.CompanyID == companyID && !n.Read && n.RelatedID == relatedID && containsKind(kinds, n.Kind) {
			ids = append(ids, n.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *ArchivedNotificationRepo) ExistsUnread(companyID, kind, relatedID string) (bool, error) {
	for _, n := range r.Rows {
		if n.CompanyID == companyID && n.Kind == kind && n.RelatedID == relatedID && !n.Read {
			return true, nil
		}
	}
	return false, nil
}

func (r *ArchivedNotificationRepo) CountUnread(companyID string) (int, error) {
	n := 0
	for _, row := range r.Rows {
		if row.CompanyID == companyID && !row.Read {
			n++
		}
	}
	return n, nil
}

func (r *ArchivedNotificationRepo) MarkRead(id string) error {
	n, ok := r.Rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Read = true
	return nil
}

func (r *ArchivedNotificationRepo) MarkReadMany(ids []string) error {
	for _, id := range ids {
		if n, ok := r.Rows[id]; ok {
			n.Read = true
		}
	}
	return nil
}

func (r *ArchivedNotificationRepo) MarkAllRead(companyID string) ([]string, error) {
	var ids []string
	for _, n := range r.Rows {
		if n.CompanyID == companyID && !n.Read {
			n.Read = true
			ids = append(ids, n.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *ArchivedNotificationRepo) SetDismissed(id string) error {
	n, ok := r.Rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.DismissedFromLayoutBar = true
	return nil
}

func (r *ArchivedNotificationRepo) Delete(id string) error {
	if _, ok := r.Rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.Rows, id)
	return nil
}

func (r *ArchivedNotificationRepo) MissingIDs(companyID string) ([]string, error) {
	var ids []string
	for id, n := range r.recent.Rows {
		if n.CompanyID != companyID {
			continue
		}
		if _, ok := r.Rows[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func matchNotification(n *entity.Notification, companyID string, f repository.NotificationFilter) bool {
	if n.CompanyID != companyID {
		return false
	}
	if f.Read != nil && n.Read != *f.Read {
		return false
	}
	if f.Kind != "" && n.Kind != f.Kind {
		return false
	}
	return true
}

func containsKind(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
