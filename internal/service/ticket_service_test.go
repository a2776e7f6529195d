package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolveit/helpdesk/internal/domain"
	"github.com/resolveit/helpdesk/internal/repository"
	apperrors "github.com/resolveit/helpdesk/pkg/util"
)

type fakeTicketRepo struct {
	tickets    map[string]*domain.Ticket
	categories map[string][]domain.Category
	updates    int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:    make(map[string]*domain.Ticket),
		categories: make(map[string][]domain.Category),
	}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	f.tickets[ticket.ID] = &stored
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.updates++
	stored := *ticket
	f.tickets[ticket.ID] = &stored
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	stored, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeTicketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	for _, stored := range f.tickets {
		if stored.TicketCode == code {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, _ repository.TicketFilter) ([]domain.Ticket, error) {
	result := make([]domain.Ticket, 0, len(f.tickets))
	for _, stored := range f.tickets {
		result = append(result, *stored)
	}
	return result, nil
}

func (f *fakeTicketRepo) CountWithFilter(_ context.Context, _ repository.TicketFilter) (int64, error) {
	return int64(len(f.tickets)), nil
}

func (f *fakeTicketRepo) ReplaceCategories(_ context.Context, ticketID string, categoryIDs []string) error {
	categories := make([]domain.Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		categories = append(categories, domain.Category{ID: id, IsActive: true})
	}
	f.categories[ticketID] = categories
	return nil
}

func (f *fakeTicketRepo) ListCategories(_ context.Context, ticketID string) ([]domain.Category, error) {
	return f.categories[ticketID], nil
}

type fakePriorityRepo struct {
	priorities map[string]*domain.TicketPriority
}

func (f *fakePriorityRepo) Create(_ context.Context, priority *domain.TicketPriority) error {
	priority.ID = uuid.NewString()
	f.priorities[priority.ID] = priority
	return nil
}

func (f *fakePriorityRepo) Update(_ context.Context, priority *domain.TicketPriority) error {
	if _, ok := f.priorities[priority.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.priorities[priority.ID] = priority
	return nil
}

func (f *fakePriorityRepo) GetByID(_ context.Context, id string) (*domain.TicketPriority, error) {
	priority, ok := f.priorities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return priority, nil
}

func (f *fakePriorityRepo) List(_ context.Context, _ bool) ([]domain.TicketPriority, error) {
	result := make([]domain.TicketPriority, 0, len(f.priorities))
	for _, priority := range f.priorities {
		result = append(result, *priority)
	}
	return result, nil
}

type fakeCategoryRepo struct {
	categories map[string]*domain.Category
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	category.ID = uuid.NewString()
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	if _, ok := f.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return category, nil
}

func (f *fakeCategoryRepo) GetByIDs(_ context.Context, ids []string) ([]domain.Category, error) {
	result := make([]domain.Category, 0, len(ids))
	for _, id := range ids {
		if category, ok := f.categories[id]; ok {
			result = append(result, *category)
		}
	}
	return result, nil
}

func (f *fakeCategoryRepo) List(_ context.Context, _ bool) ([]domain.Category, error) {
	result := make([]domain.Category, 0, len(f.categories))
	for _, category := range f.categories {
		result = append(result, *category)
	}
	return result, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return &pgconnUniqueError{}
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, _ repository.UserFilter) ([]domain.User, error) {
	result := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		result = append(result, *user)
	}
	return result, nil
}

func (f *fakeUserRepo) RecordLogin(_ context.Context, id string, at time.Time, ip *string) error {
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.LastLoginAt = &at
	user.LastLoginIP = ip
	return nil
}

func (f *fakeUserRepo) add(user domain.User) *domain.User {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	stored := user
	f.users[user.ID] = &stored
	return &stored
}

// pgconnUniqueError stands in for a database uniqueness violation.
type pgconnUniqueError struct{}

func (e *pgconnUniqueError) Error() string { return "duplicate key value" }

type fakeAuditRepo struct {
	events []domain.TicketEvent
}

func (f *fakeAuditRepo) Create(_ context.Context, event *domain.TicketEvent) error {
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeAuditRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.TicketEvent, error) {
	var result []domain.TicketEvent
	for _, event := range f.events {
		if event.TicketID == ticketID {
			result = append(result, event)
		}
	}
	return result, nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range f.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if comment.IsInternal && !includeInternal {
			continue
		}
		result = append(result, comment)
	}
	return result, nil
}

type fakeAttachmentRepo struct {
	attachments []domain.Attachment
}

func (f *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	attachment.ID = uuid.NewString()
	attachment.CreatedAt = time.Now()
	f.attachments = append(f.attachments, *attachment)
	return nil
}

func (f *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	var result []domain.Attachment
	for _, attachment := range f.attachments {
		if attachment.TicketID == ticketID && attachment.DeletedAt == nil {
			result = append(result, attachment)
		}
	}
	return result, nil
}

func (f *fakeAttachmentRepo) SoftDelete(_ context.Context, id, deletedBy string) error {
	now := time.Now()
	for i := range f.attachments {
		if f.attachments[i].ID == id {
			f.attachments[i].DeletedAt = &now
			f.attachments[i].DeletedBy = &deletedBy
			return nil
		}
	}
	return pgx.ErrNoRows
}

type ticketServiceFixture struct {
	service     *TicketService
	tickets     *fakeTicketRepo
	priorities  *fakePriorityRepo
	users       *fakeUserRepo
	audit       *fakeAuditRepo
	comments    *fakeCommentRepo
	attachments *fakeAttachmentRepo
}

func newTicketServiceFixture() *ticketServiceFixture {
	tickets := newFakeTicketRepo()
	priorities := &fakePriorityRepo{priorities: make(map[string]*domain.TicketPriority)}
	categories := &fakeCategoryRepo{categories: make(map[string]*domain.Category)}
	comments := &fakeCommentRepo{}
	attachments := &fakeAttachmentRepo{}
	users := newFakeUserRepo()
	audit := &fakeAuditRepo{}

	svc := NewTicketService(TicketDependencies{
		TicketRepo:     tickets,
		PriorityRepo:   priorities,
		CategoryRepo:   categories,
		CommentRepo:    comments,
		AttachmentRepo: attachments,
		UserRepo:       users,
		AuditRepo:      audit,
	})
	return &ticketServiceFixture{
		service:     svc,
		tickets:     tickets,
		priorities:  priorities,
		users:       users,
		audit:       audit,
		comments:    comments,
		attachments: attachments,
	}
}

func (f *ticketServiceFixture) addPriority(name string) *domain.TicketPriority {
	priority := &domain.TicketPriority{ID: uuid.NewString(), Name: name, IsActive: true}
	f.priorities.priorities[priority.ID] = priority
	return priority
}

func (f *ticketServiceFixture) addTicket(status domain.TicketStatus, assigneeID *string) *domain.Ticket {
	priority := f.addPriority("Medium")
	ticket := &domain.Ticket{
		ID:         uuid.NewString(),
		TicketCode: "RIT-" + uuid.NewString()[:8],
		Subject:    "printer on fire",
		Status:     status,
		PriorityID: priority.ID,
		Priority:   priority,
		AssigneeID: assigneeID,
		CreatedBy:  uuid.NewString(),
	}
	stored := *ticket
	f.tickets.tickets[ticket.ID] = &stored
	return ticket
}

func adminUser() *domain.User {
	return &domain.User{ID: uuid.NewString(), Role: domain.RoleAdmin, IsActive: true}
}

func agentUser() *domain.User {
	return &domain.User{ID: uuid.NewString(), Role: domain.RoleAgent, IsActive: true}
}

func TestUpdateStatusStampsResolvedAtOnce(t *testing.T) {
	fixture := newTicketServiceFixture()
	admin := adminUser()
	ticket := fixture.addTicket(domain.TicketStatusInProgress, nil)

	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixture.service.now = func() time.Time { return frozen }

	resolved, err := fixture.service.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, frozen, *resolved.ResolvedAt)

	// Reopen and resolve again later; the original stamp must survive.
	later := frozen.Add(48 * time.Hour)
	fixture.service.now = func() time.Time { return later }

	_, err = fixture.service.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusReopened)
	require.NoError(t, err)
	reResolved, err := fixture.service.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, reResolved.ResolvedAt)
	assert.Equal(t, frozen, *reResolved.ResolvedAt)
}

func TestUpdateStatusStampsClosedAtOnce(t *testing.T) {
	fixture := newTicketServiceFixture()
	admin := adminUser()
	ticket := fixture.addTicket(domain.TicketStatusResolved, nil)

	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixture.service.now = func() time.Time { return frozen }

	closed, err := fixture.service.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, frozen, *closed.ClosedAt)

	fixture.service.now = func() time.Time { return frozen.Add(time.Hour) }
	_, err = fixture.service.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusReopened)
	require.NoError(t, err)
	reclosed, err := fixture.service.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, frozen, *reclosed.ClosedAt)
}

func TestUpdateStatusAgentOwnership(t *testing.T) {
	tests := []struct {
		name       string
		assignee   func(agent *domain.User) *string
		wantErr    bool
		wantStatus domain.TicketStatus
	}{
		{
			name:       "assigned agent may transition",
			assignee:   func(agent *domain.User) *string { return &agent.ID },
			wantStatus: domain.TicketStatusInProgress,
		},
		{
			name:       "unassigned ticket is forbidden",
			assignee:   func(*domain.User) *string { return nil },
			wantErr:    true,
			wantStatus: domain.TicketStatusAssigned,
		},
		{
			name: "ticket assigned to someone else is forbidden",
			assignee: func(*domain.User) *string {
				other := uuid.NewString()
				return &other
			},
			wantErr:    true,
			wantStatus: domain.TicketStatusAssigned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newTicketServiceFixture()
			agent := agentUser()
			ticket := fixture.addTicket(domain.TicketStatusAssigned, tt.assignee(agent))

			_, err := fixture.service.UpdateStatus(context.Background(), agent, ticket.ID, domain.TicketStatusInProgress)
			if tt.wantErr {
				require.Error(t, err)
				domainErr := apperrors.ToDomainError(err)
				assert.Equal(t, "FORBIDDEN", domainErr.Code)
				assert.Zero(t, fixture.tickets.updates, "forbidden call must not write")
			} else {
				require.NoError(t, err)
			}
			stored, getErr := fixture.tickets.GetByID(context.Background(), ticket.ID)
			require.NoError(t, getErr)
			assert.Equal(t, tt.wantStatus, stored.Status)
		})
	}
}

func TestUpdateStatusRejectsInvalidValue(t *testing.T) {
	fixture := newTicketServiceFixture()
	admin := adminUser()
	ticket := fixture.addTicket(domain.TicketStatusNew, nil)

	_, err := fixture.service.UpdateStatus(context.Background(), admin, ticket.ID, "ESCALATED")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	assert.Zero(t, fixture.tickets.updates)
}

func TestUpdateStatusCustomerForbidden(t *testing.T) {
	fixture := newTicketServiceFixture()
	customer := &domain.User{ID: uuid.NewString(), Role: domain.RoleCustomer, IsActive: true}
	ticket := fixture.addTicket(domain.TicketStatusNew, nil)

	_, err := fixture.service.UpdateStatus(context.Background(), customer, ticket.ID, domain.TicketStatusClosed)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestUpdateStatusUnknownTicket(t *testing.T) {
	fixture := newTicketServiceFixture()
	_, err := fixture.service.UpdateStatus(context.Background(), adminUser(), uuid.NewString(), domain.TicketStatusClosed)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestUpdatePriorityDoesNotTouchTimestamps(t *testing.T) {
	fixture := newTicketServiceFixture()
	admin := adminUser()
	ticket := fixture.addTicket(domain.TicketStatusResolved, nil)
	resolvedAt := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	fixture.tickets.tickets[ticket.ID].ResolvedAt = &resolvedAt

	high := fixture.addPriority("High")
	updated, err := fixture.service.UpdatePriority(context.Background(), admin, ticket.ID, high.ID)
	require.NoError(t, err)
	assert.Equal(t, high.ID, updated.PriorityID)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, resolvedAt, *updated.ResolvedAt)
}

func TestUpdatePriorityRejectsInactive(t *testing.T) {
	fixture := newTicketServiceFixture()
	admin := adminUser()
	ticket := fixture.addTicket(domain.TicketStatusNew, nil)

	inactive := &domain.TicketPriority{ID: uuid.NewString(), Name: "Legacy", IsActive: false}
	fixture.priorities.priorities[inactive.ID] = inactive

	_, err := fixture.service.UpdatePriority(context.Background(), admin, ticket.ID, inactive.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestUpdateAssigneeAdminOnly(t *testing.T) {
	fixture := newTicketServiceFixture()
	agent := agentUser()
	ticket := fixture.addTicket(domain.TicketStatusNew, nil)

	_, err := fixture.service.UpdateAssignee(context.Background(), agent, ticket.ID, &agent.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	assert.Zero(t, fixture.tickets.updates)
}

func TestUpdateAssigneeValidation(t *testing.T) {
	fixture := newTicketServiceFixture()
	admin := adminUser()
	ticket := fixture.addTicket(domain.TicketStatusNew, nil)

	customer := fixture.users.add(domain.User{Role: domain.RoleCustomer, IsActive: true, Email: "c@example.com"})
	_, err := fixture.service.UpdateAssignee(context.Background(), admin, ticket.ID, &customer.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	inactiveAgent := fixture.users.add(domain.User{Role: domain.RoleAgent, IsActive: false, Email: "a@example.com"})
	_, err = fixture.service.UpdateAssignee(context.Background(), admin, ticket.ID, &inactiveAgent.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	activeAgent := fixture.users.add(domain.User{Role: domain.RoleAgent, IsActive: true, Email: "b@example.com"})
	updated, err := fixture.service.UpdateAssignee(context.Background(), admin, ticket.ID, &activeAgent.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, activeAgent.ID, *updated.AssigneeID)
}

func TestUpdateAssigneeClears(t *testing.T) {
	fixture := newTicketServiceFixture()
	admin := adminUser()
	agentID := uuid.NewString()
	ticket := fixture.addTicket(domain.TicketStatusAssigned, &agentID)

	updated, err := fixture.service.UpdateAssignee(context.Background(), admin, ticket.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeID)
}

func TestListTicketsRejectsUnknownSortField(t *testing.T) {
	fixture := newTicketServiceFixture()
	_, err := fixture.service.ListTickets(context.Background(), repository.TicketFilter{
		SortField: repository.TicketSortField("requester_email"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestMutationsAppendAuditEvents(t *testing.T) {
	fixture := newTicketServiceFixture()
	admin := adminUser()
	ticket := fixture.addTicket(domain.TicketStatusNew, nil)

	_, err := fixture.service.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)

	entries, err := fixture.audit.ListByTicket(context.Background(), ticket.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ChangeTypeStatus, entries[0].ChangeType)
	assert.Equal(t, map[string]any{"status": domain.TicketStatusNew}, entries[0].OldValue)
	assert.Equal(t, map[string]any{"status": domain.TicketStatusInProgress}, entries[0].NewValue)
}

func TestCustomerCommentVisibility(t *testing.T) {
	fixture := newTicketServiceFixture()
	agent := agentUser()
	customer := &domain.User{ID: uuid.NewString(), Role: domain.RoleCustomer, IsActive: true}
	ticket := fixture.addTicket(domain.TicketStatusNew, &agent.ID)
	fixture.tickets.tickets[ticket.ID].CreatedBy = customer.ID

	_, err := fixture.service.AddComment(context.Background(), customer, ticket.ID, "any update?", false)
	require.NoError(t, err)
	_, err = fixture.service.AddComment(context.Background(), agent, ticket.ID, "vendor escalated", true)
	require.NoError(t, err)

	customerView, err := fixture.service.ListComments(context.Background(), customer, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, customerView, 1)

	staffView, err := fixture.service.ListComments(context.Background(), agent, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, staffView, 2)

	_, err = fixture.service.AddComment(context.Background(), customer, ticket.ID, "sneaky", true)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestCreateTicketStartsNew(t *testing.T) {
	fixture := newTicketServiceFixture()
	customer := &domain.User{ID: uuid.NewString(), Role: domain.RoleCustomer, IsActive: true}
	priority := fixture.addPriority("Low")

	ticket, err := fixture.service.CreateTicket(context.Background(), customer, TicketCreateInput{
		Subject:    "vpn drops every hour",
		PriorityID: priority.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.NotEmpty(t, ticket.TicketCode)
	assert.Equal(t, customer.ID, ticket.CreatedBy)
	assert.Nil(t, ticket.ResolvedAt)
	assert.Nil(t, ticket.ClosedAt)
}

func TestDeleteAttachmentOwnership(t *testing.T) {
	fixture := newTicketServiceFixture()
	customer := &domain.User{ID: uuid.NewString(), Role: domain.RoleCustomer, IsActive: true}
	other := &domain.User{ID: uuid.NewString(), Role: domain.RoleCustomer, IsActive: true}
	ticket := fixture.addTicket(domain.TicketStatusNew, nil)
	fixture.tickets.tickets[ticket.ID].CreatedBy = customer.ID

	attachment, err := fixture.service.AddAttachment(context.Background(), customer, &domain.Attachment{
		TicketID:     ticket.ID,
		OriginalName: "error.log",
		StoredName:   "a1b2c3.log",
	})
	require.NoError(t, err)

	err = fixture.service.DeleteAttachment(context.Background(), other, ticket.ID, attachment.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	require.NoError(t, fixture.service.DeleteAttachment(context.Background(), customer, ticket.ID, attachment.ID))

	remaining, err := fixture.service.ListAttachments(context.Background(), customer, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
