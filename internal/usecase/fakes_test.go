package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
	"github.com/samber/lo"
)

// fakeStore is an in-memory annotation store shared by the typed repository views below.
type fakeStore struct {
	mu         sync.RWMutex
	seq        int64
	statements map[int64]entity.Statement
	qualifiers map[string]entity.Qualifier
	users      map[string]entity.User
	comments   []entity.Comment
	approvals  []entity.Approval

	// commentDeleteErr makes fakeComments.DeleteByItemUser fail.
	commentDeleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		statements: map[int64]entity.Statement{},
		qualifiers: map[string]entity.Qualifier{},
		users:      map[string]entity.User{},
	}
}

func (s *fakeStore) Statements() *fakeStatements { return &fakeStatements{s} }
func (s *fakeStore) Qualifiers() *fakeQualifiers { return &fakeQualifiers{s} }
func (s *fakeStore) Users() *fakeUsers           { return &fakeUsers{s} }
func (s *fakeStore) Comments() *fakeComments     { return &fakeComments{s} }
func (s *fakeStore) Approvals() *fakeApprovals   { return &fakeApprovals{s} }

func (s *fakeStore) statementCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.statements)
}

func (s *fakeStore) qualifierCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.qualifiers)
}

func cloneStatement(in entity.Statement) entity.Statement {
	out := in
	if in.Reference != nil {
		ref := *in.Reference
		out.Reference = &ref
	}
	return out
}

type fakeStatements struct{ *fakeStore }

var _ repository.StatementRepository = (*fakeStatements)(nil)

func (r *fakeStatements) Create(ctx context.Context, stmt *entity.Statement) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := cloneStatement(*stmt)
	copy.ID = r.seq
	r.statements[copy.ID] = copy
	return copy.ID, nil
}

func (r *fakeStatements) Get(ctx context.Context, id int64) (*entity.Statement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stmt, ok := r.statements[id]
	if !ok {
		return nil, entity.ErrStatementNotFound
	}
	out := cloneStatement(stmt)
	return &out, nil
}

func (r *fakeStatements) sorted(match func(entity.Statement) bool) []entity.Statement {
	var out []entity.Statement
	for _, stmt := range r.statements {
		if match(stmt) {
			out = append(out, cloneStatement(stmt))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeStatements) ListByItemUser(ctx context.Context, itemID, username string) ([]entity.Statement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(s entity.Statement) bool { return s.ItemID == itemID && s.Username == username }), nil
}

func (r *fakeStatements) List(ctx context.Context, query *repository.ListStatementQuery) ([]entity.Statement, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.sorted(func(s entity.Statement) bool {
		return (query.ItemID == "" || s.ItemID == query.ItemID) && (query.Username == "" || s.Username == query.Username)
	})
	total := int64(len(out))
	start := min(int(query.Offset()), len(out))
	end := min(start+int(query.PageSize), len(out))
	return out[start:end], total, nil
}

func (r *fakeStatements) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref := entity.FormatStatementID(id)
	delete(r.statements, id)
	delete(r.qualifiers, ref)
	r.comments = lo.Reject(r.comments, func(c entity.Comment, _ int) bool { return c.StatementID == ref })
	return nil
}

func (r *fakeStatements) Purge(ctx context.Context, itemID, username string, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.statements, id)
		delete(r.qualifiers, entity.FormatStatementID(id))
	}
	pair := func(item, user string) bool { return item == itemID && user == username }
	r.comments = lo.Reject(r.comments, func(c entity.Comment, _ int) bool { return pair(c.ItemID, c.Username) })
	r.approvals = lo.Reject(r.approvals, func(a entity.Approval, _ int) bool { return pair(a.ItemID, a.Username) })
	return nil
}

func (r *fakeStatements) AnnotatedObjects(ctx context.Context, page repository.Pagination) ([]entity.AnnotatedObject, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contributors := map[string][]string{}
	for _, stmt := range r.sorted(func(entity.Statement) bool { return true }) {
		if !lo.Contains(contributors[stmt.ItemID], stmt.Username) {
			contributors[stmt.ItemID] = append(contributors[stmt.ItemID], stmt.Username)
		}
	}
	items := lo.Keys(contributors)
	sort.Strings(items)
	out := lo.Map(items, func(id string, _ int) entity.AnnotatedObject {
		return entity.AnnotatedObject{ItemID: id, Contributors: contributors[id]}
	})
	return out, int64(len(out)), nil
}

func (r *fakeStatements) AnnotatedObjectsByUser(ctx context.Context, username string, page repository.Pagination) ([]string, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []string
	for _, stmt := range r.sorted(func(s entity.Statement) bool { return s.Username == username }) {
		items = append(items, stmt.ItemID)
	}
	items = lo.Uniq(items)
	sort.Strings(items)
	return items, int64(len(items)), nil
}

type fakeQualifiers struct{ *fakeStore }

var _ repository.QualifierRepository = (*fakeQualifiers)(nil)

func (r *fakeQualifiers) Upsert(ctx context.Context, q *entity.Qualifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.qualifiers[q.StatementRef] = *q
	return nil
}

func (r *fakeQualifiers) Find(ctx context.Context, ref string) (*entity.Qualifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.qualifiers[ref]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *fakeQualifiers) FindMany(ctx context.Context, refs []string) (map[string]entity.Qualifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := map[string]entity.Qualifier{}
	for _, ref := range refs {
		if q, ok := r.qualifiers[ref]; ok {
			out[ref] = q
		}
	}
	return out, nil
}

func (r *fakeQualifiers) Delete(ctx context.Context, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.qualifiers, ref)
	return nil
}

type fakeUsers struct{ *fakeStore }

var _ repository.UserRepository = (*fakeUsers)(nil)

func (r *fakeUsers) Get(ctx context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUsers) Ensure(ctx context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	if _, ok := r.users[username]; !ok {
		r.users[username] = entity.User{Username: username}
	}
	r.mu.Unlock()
	return r.Get(ctx, username)
}

func (r *fakeUsers) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return entity.ErrUserAlreadyExists
	}
	r.users[user.Username] = *user
	return nil
}

func (r *fakeUsers) RequestLead(ctx context.Context, username string) error {
	return r.update(username, func(u *entity.User) { u.RequestedLeadStatus = true })
}

func (r *fakeUsers) GrantLead(ctx context.Context, username string) error {
	return r.update(username, func(u *entity.User) {
		u.IsProjectLead = true
		u.RequestedLeadStatus = false
	})
}

func (r *fakeUsers) update(username string, fn func(*entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return entity.ErrUserNotFound
	}
	fn(&u)
	r.users[username] = u
	return nil
}

func (r *fakeUsers) ListLeadRequests(ctx context.Context) ([]entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.User
	for _, u := range r.users {
		if u.RequestedLeadStatus {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type fakeComments struct{ *fakeStore }

var _ repository.CommentRepository = (*fakeComments)(nil)

func (r *fakeComments) Create(ctx context.Context, c *entity.Comment) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *c
	copy.ID = r.seq
	r.comments = append(r.comments, copy)
	return copy.ID, nil
}

func (r *fakeComments) List(ctx context.Context, itemID, username string) ([]entity.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.comments, func(c entity.Comment, _ int) bool { return c.ItemID == itemID && c.Username == username }), nil
}

func (r *fakeComments) DeleteByItemUser(ctx context.Context, itemID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commentDeleteErr != nil {
		return r.commentDeleteErr
	}
	r.comments = lo.Reject(r.comments, func(c entity.Comment, _ int) bool { return c.ItemID == itemID && c.Username == username })
	return nil
}

type fakeApprovals struct{ *fakeStore }

var _ repository.ApprovalRepository = (*fakeApprovals)(nil)

func (r *fakeApprovals) Create(ctx context.Context, a *entity.Approval) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *a
	copy.ID = r.seq
	r.approvals = append(r.approvals, copy)
	return copy.ID, nil
}

func (r *fakeApprovals) Latest(ctx context.Context, itemID, username string) (*entity.Approval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.approvals) - 1; i >= 0; i-- {
		if a := r.approvals[i]; a.ItemID == itemID && a.Username == username {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *fakeApprovals) DeleteByItemUser(ctx context.Context, itemID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approvals = lo.Reject(r.approvals, func(a entity.Approval, _ int) bool { return a.ItemID == itemID && a.Username == username })
	return nil
}

// fakeLabels resolves labels from a fixed table and counts lookups.
type fakeLabels struct {
	mu      sync.Mutex
	labels  map[string]entity.Label
	lookups [][]string
}

func (f *fakeLabels) ResolveLabels(ctx context.Context, ids []string, langs entity.Languages) (map[string]entity.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, append([]string(nil), ids...))
	out := map[string]entity.Label{}
	for _, id := range ids {
		if l, ok := f.labels[id]; ok {
			out[id] = l
		}
	}
	return out, nil
}

type fakeEntities struct {
	docs map[string]*entity.EntityDocument
}

func (f *fakeEntities) GetEntity(ctx context.Context, id string, langs entity.Languages) (*entity.EntityDocument, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, entity.ErrEntityNotFound)
	}
	return doc, nil
}

type fakeMedia struct {
	info        *entity.ImageInfo
	attribution *entity.Attribution
}

func (f *fakeMedia) ImageInfo(ctx context.Context, title string, thumbWidth int) (*entity.ImageInfo, error) {
	if f.info == nil {
		return nil, entity.ErrImageNotFound
	}
	info := *f.info
	info.Title = title
	return &info, nil
}

func (f *fakeMedia) Attribution(ctx context.Context, title, language string) (*entity.Attribution, error) {
	return f.attribution, nil
}

// fakeKB records remote calls in order and fails the call named in failOn at its failAt-th occurrence.
type fakeKB struct {
	mu       sync.Mutex
	calls    []string
	counts   map[string]int
	failOn   string
	failAt   int
	failWith error
	messages []string
	claimSeq int
}

func newFakeKB() *fakeKB { return &fakeKB{counts: map[string]int{}} }

func (f *fakeKB) Session(identity *entity.Identity) (repository.KnowledgeSession, error) {
	if !identity.LoggedIn() {
		return nil, entity.Unauthorized(entity.ErrNotLoggedIn, "")
	}
	return f, nil
}

func (f *fakeKB) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[call]++
	if call == f.failOn && f.counts[call] == f.failAt {
		f.calls = append(f.calls, call+"!")
		if f.failWith != nil {
			return f.failWith
		}
		return &entity.RemoteError{Code: "failed", Info: call}
	}
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeKB) CreateClaim(ctx context.Context, itemID, propertyID string, snak entity.Snak) (string, error) {
	if err := f.record("claim"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claimSeq++
	return fmt.Sprintf("%s$%d", itemID, f.claimSeq), nil
}

func (f *fakeKB) SetQualifier(ctx context.Context, claimID string, region entity.Region, hash string) (string, error) {
	if err := f.record("qualifier"); err != nil {
		return "", err
	}
	return "hash-" + region.String(), nil
}

func (f *fakeKB) SetReference(ctx context.Context, claimID string, ref entity.Reference) error {
	return f.record("reference")
}

func (f *fakeKB) SendMessage(ctx context.Context, username, subject, body string) error {
	if err := f.record("message"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, username+": "+subject+"\n"+body)
	return nil
}

var errBoom = errors.New("boom")
