package graph

import (
	"context"
	"fmt"
	"math"

	"github.com/aloks98/workspaces/store"
)

// Object resolvers hold the record fetched by their parent. Relation
// fields issue one store call keyed by that record's id.

// intID narrows a stored id to the schema's Int. Ids the schema cannot
// carry are reported as internal errors instead of wrapping around.
func (r *Resolver) intID(ctx context.Context, op string, id int64) (int32, error) {
	if id < math.MinInt32 || id > math.MaxInt32 {
		return 0, r.fail(ctx, op, "", fmt.Errorf("%w: %d", errIDOutOfRange, id))
	}
	return int32(id), nil
}

// UserResolver resolves the User type. There is deliberately no
// password field.
type UserResolver struct {
	root *Resolver
	u    *store.User
}

func (r *Resolver) user(u *store.User) *UserResolver {
	if u == nil {
		return nil
	}
	return &UserResolver{root: r, u: u}
}

func (r *Resolver) users(us []*store.User) []*UserResolver {
	out := make([]*UserResolver, 0, len(us))
	for _, u := range us {
		out = append(out, r.user(u))
	}
	return out
}

func (u *UserResolver) ID() string { return u.u.ID }
func (u *UserResolver) Name() *string { return u.u.Name }
func (u *UserResolver) Email() string { return u.u.Email }
func (u *UserResolver) Verified() *bool { return u.u.Verified }

func (u *UserResolver) Owned(ctx context.Context) ([]*WorkspaceResolver, error) {
	s, err := u.root.store(ctx, "User.owned")
	if err != nil {
		return nil, err
	}
	ws, err := s.OwnedWorkspaces(ctx, u.u.ID)
	if err != nil {
		return nil, u.root.fail(ctx, "User.owned", "user", err)
	}
	return u.root.workspaces(ws), nil
}

func (u *UserResolver) Shared(ctx context.Context) ([]*WorkspaceResolver, error) {
	s, err := u.root.store(ctx, "User.shared")
	if err != nil {
		return nil, err
	}
	ws, err := s.SharedWorkspaces(ctx, u.u.ID)
	if err != nil {
		return nil, u.root.fail(ctx, "User.shared", "user", err)
	}
	return u.root.workspaces(ws), nil
}

// WorkspaceResolver resolves the Workspace type.
type WorkspaceResolver struct {
	root *Resolver
	w    *store.Workspace
}

func (r *Resolver) workspace(w *store.Workspace) *WorkspaceResolver {
	if w == nil {
		return nil
	}
	return &WorkspaceResolver{root: r, w: w}
}

func (r *Resolver) workspaces(ws []*store.Workspace) []*WorkspaceResolver {
	out := make([]*WorkspaceResolver, 0, len(ws))
	for _, w := range ws {
		out = append(out, r.workspace(w))
	}
	return out
}

func (w *WorkspaceResolver) ID(ctx context.Context) (int32, error) {
	return w.root.intID(ctx, "Workspace.id", w.w.ID)
}

func (w *WorkspaceResolver) CreatedAt() DateTime { return DateTime{w.w.CreatedAt} }
func (w *WorkspaceResolver) UpdatedAt() DateTime { return DateTime{w.w.UpdatedAt} }
func (w *WorkspaceResolver) Title() string { return w.w.Title }
func (w *WorkspaceResolver) Color() string { return w.w.Color }

func (w *WorkspaceResolver) Owner(ctx context.Context) (*UserResolver, error) {
	s, err := w.root.store(ctx, "Workspace.owner")
	if err != nil {
		return nil, err
	}
	u, err := s.WorkspaceOwner(ctx, w.w.ID)
	if err != nil {
		return nil, w.root.fail(ctx, "Workspace.owner", "workspace owner", err)
	}
	return w.root.user(u), nil
}

func (w *WorkspaceResolver) Users(ctx context.Context) ([]*UserResolver, error) {
	s, err := w.root.store(ctx, "Workspace.users")
	if err != nil {
		return nil, err
	}
	us, err := s.WorkspaceUsers(ctx, w.w.ID)
	if err != nil {
		return nil, w.root.fail(ctx, "Workspace.users", "workspace", err)
	}
	return w.root.users(us), nil
}

func (w *WorkspaceResolver) Items(ctx context.Context) ([]*ItemResolver, error) {
	s, err := w.root.store(ctx, "Workspace.items")
	if err != nil {
		return nil, err
	}
	items, err := s.WorkspaceItems(ctx, w.w.ID)
	if err != nil {
		return nil, w.root.fail(ctx, "Workspace.items", "workspace", err)
	}
	out := make([]*ItemResolver, 0, len(items))
	for _, it := range items {
		out = append(out, w.root.item(it))
	}
	return out, nil
}

// ItemResolver resolves the Item type.
type ItemResolver struct {
	root *Resolver
	i    *store.Item
}

func (r *Resolver) item(i *store.Item) *ItemResolver {
	if i == nil {
		return nil
	}
	return &ItemResolver{root: r, i: i}
}

func (i *ItemResolver) ID(ctx context.Context) (int32, error) {
	return i.root.intID(ctx, "Item.id", i.i.ID)
}

func (i *ItemResolver) CreatedAt() DateTime { return DateTime{i.i.CreatedAt} }
func (i *ItemResolver) Name() string { return i.i.Name }
func (i *ItemResolver) Type() string { return string(i.i.Type) }

func (i *ItemResolver) Workspace(ctx context.Context) (*WorkspaceResolver, error) {
	s, err := i.root.store(ctx, "Item.workspace")
	if err != nil {
		return nil, err
	}
	w, err := s.ItemWorkspace(ctx, i.i.ID)
	if err != nil {
		return nil, i.root.fail(ctx, "Item.workspace", "item", err)
	}
	return i.root.workspace(w), nil
}

// AuthPayloadResolver resolves the AuthPayload type.
type AuthPayloadResolver struct {
	message *string
	token   *string
	user    *UserResolver
}

func (p *AuthPayloadResolver) Message() *string { return p.message }
func (p *AuthPayloadResolver) Token() *string { return p.token }
func (p *AuthPayloadResolver) User() *UserResolver { return p.user }
