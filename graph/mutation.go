package graph

import (
	"context"
	"errors"

	"github.com/aloks98/workspaces/password"
	"github.com/aloks98/workspaces/store"
)

// UserCreateInput is the signupUser input.
type UserCreateInput struct {
	Email    string
	Password string
	Name     *string
}

// AddItemInput is the addItem input.
type AddItemInput struct {
	Name string
}

// UpdateItemInput is the updateItem input.
type UpdateItemInput struct {
	Type string
}

// WorkspaceCreateInput is the createWorkspace input.
type WorkspaceCreateInput struct {
	Title string
	Color string
}

// WorkspaceShareInput identifies the user to add to or remove from a
// workspace's shared list.
type WorkspaceShareInput struct {
	UserID string
}

// Login exchanges credentials for a token. It never returns an error:
// unknown emails and wrong passwords produce the same payload.
func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) *AuthPayloadResolver {
	s, err := r.store(ctx, "login")
	if err != nil {
		return invalidCredentials()
	}

	u, err := s.GetUserByEmail(ctx, args.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.logger.Printf("[graph] login lookup failed: %v", err)
		}
		r.hasher.VerifyAbsent(args.Password)
		return invalidCredentials()
	}

	ok, err := r.hasher.Verify(args.Password, u.PasswordHash)
	if err != nil {
		r.logger.Printf("[graph] login verify failed for user %s: %v", u.ID, err)
		return invalidCredentials()
	}
	if !ok {
		return invalidCredentials()
	}

	if r.signer == nil {
		r.logger.Printf("[graph] login: no token signer configured")
		return invalidCredentials()
	}
	signed, err := r.signer.Sign(u.ID)
	if err != nil {
		r.logger.Printf("[graph] login sign failed for user %s: %v", u.ID, err)
		return invalidCredentials()
	}

	return &AuthPayloadResolver{token: &signed, user: r.user(u)}
}

func invalidCredentials() *AuthPayloadResolver {
	msg := InvalidCredentialsMessage
	return &AuthPayloadResolver{message: &msg}
}

// SignupUser creates a user and its default workspace in one store call.
func (r *Resolver) SignupUser(ctx context.Context, args struct{ Data UserCreateInput }) (*UserResolver, error) {
	s, err := r.store(ctx, "signupUser")
	if err != nil {
		return nil, err
	}

	hash, err := r.hasher.Hash(args.Data.Password)
	if errors.Is(err, password.ErrPasswordTooLong) {
		return nil, badInput("password is too long", err)
	}
	if err != nil {
		return nil, r.fail(ctx, "signupUser", "", err)
	}

	verified := false
	u := &store.User{
		Name:         args.Data.Name,
		Email:        args.Data.Email,
		PasswordHash: hash,
		Verified:     &verified,
	}
	ws := &store.Workspace{Title: r.defaultTitle, Color: r.defaultColor}
	if err := s.CreateUser(ctx, u, ws); err != nil {
		return nil, r.fail(ctx, "signupUser", "user", err)
	}
	return r.user(u), nil
}

// AddItem creates a TODO item in a workspace.
func (r *Resolver) AddItem(ctx context.Context, args struct {
	Data        AddItemInput
	WorkspaceID int32
}) (*ItemResolver, error) {
	s, err := r.store(ctx, "addItem")
	if err != nil {
		return nil, err
	}
	item := &store.Item{
		Name:        args.Data.Name,
		Type:        store.ItemTodo,
		WorkspaceID: int64(args.WorkspaceID),
	}
	if err := s.CreateItem(ctx, item); err != nil {
		return nil, r.fail(ctx, "addItem", "workspace", err)
	}
	return r.item(item), nil
}

// UpdateItem changes the type of an item.
func (r *Resolver) UpdateItem(ctx context.Context, args struct {
	Data   UpdateItemInput
	ItemID int32
}) (*ItemResolver, error) {
	s, err := r.store(ctx, "updateItem")
	if err != nil {
		return nil, err
	}
	t, err := store.ParseItemType(args.Data.Type)
	if err != nil {
		return nil, badInput(err.Error(), err)
	}
	item, err := s.UpdateItemType(ctx, int64(args.ItemID), t)
	if err != nil {
		return nil, r.fail(ctx, "updateItem", "item", err)
	}
	return r.item(item), nil
}

// RemoveItem deletes an item and returns it.
func (r *Resolver) RemoveItem(ctx context.Context, args struct{ ID int32 }) (*ItemResolver, error) {
	s, err := r.store(ctx, "removeItem")
	if err != nil {
		return nil, err
	}
	item, err := s.DeleteItem(ctx, int64(args.ID))
	if err != nil {
		return nil, r.fail(ctx, "removeItem", "item", err)
	}
	return r.item(item), nil
}

// CreateWorkspace creates a workspace owned by the user with authorEmail.
func (r *Resolver) CreateWorkspace(ctx context.Context, args struct {
	Data        WorkspaceCreateInput
	AuthorEmail string
}) (*WorkspaceResolver, error) {
	s, err := r.store(ctx, "createWorkspace")
	if err != nil {
		return nil, err
	}
	ws := &store.Workspace{Title: args.Data.Title, Color: args.Data.Color}
	if err := s.CreateWorkspace(ctx, ws, args.AuthorEmail); err != nil {
		return nil, r.fail(ctx, "createWorkspace", "user", err)
	}
	return r.workspace(ws), nil
}

// DeleteWorkspace deletes a workspace and returns it.
func (r *Resolver) DeleteWorkspace(ctx context.Context, args struct{ ID int32 }) (*WorkspaceResolver, error) {
	s, err := r.store(ctx, "deleteWorkspace")
	if err != nil {
		return nil, err
	}
	ws, err := s.DeleteWorkspace(ctx, int64(args.ID))
	if err != nil {
		return nil, r.fail(ctx, "deleteWorkspace", "workspace", err)
	}
	return r.workspace(ws), nil
}

type shareArgs struct {
	Data        WorkspaceShareInput
	WorkspaceID int32
}

// ShareWorkspace adds a user to a workspace's shared list.
func (r *Resolver) ShareWorkspace(ctx context.Context, args shareArgs) (*WorkspaceResolver, error) {
	s, err := r.store(ctx, "shareWorkspace")
	if err != nil {
		return nil, err
	}
	ws, err := s.ShareWorkspace(ctx, int64(args.WorkspaceID), args.Data.UserID)
	if err != nil {
		return nil, r.fail(ctx, "shareWorkspace", "workspace or user", err)
	}
	return r.workspace(ws), nil
}

// UnshareWorkspace removes a user from a workspace's shared list.
func (r *Resolver) UnshareWorkspace(ctx context.Context, args shareArgs) (*WorkspaceResolver, error) {
	s, err := r.store(ctx, "unshareWorkspace")
	if err != nil {
		return nil, err
	}
	ws, err := s.UnshareWorkspace(ctx, int64(args.WorkspaceID), args.Data.UserID)
	if err != nil {
		return nil, r.fail(ctx, "unshareWorkspace", "workspace or user", err)
	}
	return r.workspace(ws), nil
}
