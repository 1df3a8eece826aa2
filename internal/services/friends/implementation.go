package friends

import (
	"context"

	"go.uber.org/zap"

	"forest-tails/server/internal/apperr"
	"forest-tails/server/internal/executor"
	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/session"
	"forest-tails/server/internal/store"
)

type friendsService struct {
	logger      *zap.Logger
	ex          *executor.Executor
	friendships store.Friendships
	users       store.Users
	registry    *session.Registry
	notifier    *session.Notifier
	transitions Transitions
}

// Option configures the service.
type Option func(*friendsService)

// WithTransitions restricts which status changes UpdateStatus accepts.
func WithTransitions(t Transitions) Option {
	return func(s *friendsService) {
		s.transitions = t
	}
}

func NewFriendsService(
	logger *zap.Logger,
	ex *executor.Executor,
	friendships store.Friendships,
	users store.Users,
	registry *session.Registry,
	notifier *session.Notifier,
	opts ...Option,
) Service {
	s := &friendsService{
		logger:      logger,
		ex:          ex,
		friendships: friendships,
		users:       users,
		registry:    registry,
		notifier:    notifier,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *friendsService) SendRequest(ctx context.Context, conn *session.Conn, req SendRequestRequest) protocol.Response[bool] {
	return executor.Run(s.ex, ctx, "SendFriendRequest", func(ctx context.Context) error {
		current, err := requireUser(conn)
		if err != nil {
			return err
		}
		if err := validateTargetUsername(req.TargetUsername); err != nil {
			return err
		}
		if req.TargetUsername == current.Username {
			return apperr.Conflict("Cannot send friend requests to yourself", protocol.CodeConflict)
		}

		target, err := s.users.FindByUsername(ctx, req.TargetUsername)
		if err != nil {
			return err
		}
		if target == nil {
			return apperr.NotFound("Target user not found", protocol.CodeNotFound)
		}

		status, found, err := s.friendships.StatusEither(ctx, current.ID, target.ID)
		if err != nil {
			return err
		}
		if found {
			return validateRelationshipStateFromRequest(status)
		}

		if err := s.friendships.InsertPending(ctx, current.ID, target.ID); err != nil {
			return err
		}

		if ch := s.registry.Channel(target.Username); ch != nil {
			s.logger.Debug("notifying user about a new friend request",
				zap.String("target", target.Username), zap.String("from", current.Username))
			go s.notifier.Push(ch, target.Username, func() protocol.Push {
				return protocol.Push{
					Type: protocol.PushFriendRequestReceived,
					Body: protocol.OK(protocol.Friend{
						ID:       current.ID,
						Username: current.Username,
						AvatarID: current.AvatarID,
						IsOnline: true,
						Status:   string(store.StatusPending),
					}),
				}
			})
		}
		return nil
	})
}

func (s *friendsService) Respond(ctx context.Context, conn *session.Conn, req RespondRequest) protocol.Response[bool] {
	return executor.Run(s.ex, ctx, "RespondToRequest", func(ctx context.Context) error {
		current, err := requireUser(conn)
		if err != nil {
			return err
		}

		status, found, err := s.friendships.StatusDirected(ctx, req.RequesterID, current.ID)
		if err != nil {
			return err
		}
		if !found || status != store.StatusPending {
			return apperr.NotFound("Request does not exist", protocol.CodeNotFound)
		}

		if req.Accept {
			if err := s.friendships.UpdateStatus(ctx, req.RequesterID, current.ID, store.StatusAccepted); err != nil {
				return err
			}
			s.notifyRequester(ctx, current, req.RequesterID, true)
			return nil
		}
		// Rejection deletes the record and deliberately does not notify the
		// requester.
		return s.friendships.Delete(ctx, req.RequesterID, current.ID)
	})
}

func (s *friendsService) Remove(ctx context.Context, conn *session.Conn, req RemoveRequest) protocol.Response[bool] {
	return executor.Run(s.ex, ctx, "RemoveFriend", func(ctx context.Context) error {
		current, err := requireUser(conn)
		if err != nil {
			return err
		}
		return s.friendships.Delete(ctx, current.ID, req.FriendID)
	})
}

func (s *friendsService) List(ctx context.Context, conn *session.Conn) protocol.Response[[]protocol.Friend] {
	return executor.Execute(s.ex, ctx, "RequestFriendsList", func(ctx context.Context) ([]protocol.Friend, error) {
		current, err := requireUser(conn)
		if err != nil {
			return nil, err
		}

		records, err := s.friendships.ListByStatus(ctx, current.ID, store.StatusAccepted)
		if err != nil {
			return nil, err
		}

		friends := make([]protocol.Friend, 0, len(records))
		for _, rec := range records {
			counterpartID := rec.RequesterID
			if counterpartID == current.ID {
				counterpartID = rec.AddresseeID
			}
			friend, err := s.users.FindByID(ctx, counterpartID)
			if err != nil {
				return nil, err
			}
			if friend == nil {
				return nil, apperr.NotFound("Friend user not found", protocol.CodeFriendNotFound)
			}
			friends = append(friends, protocol.Friend{
				ID:       friend.ID,
				Username: friend.Username,
				AvatarID: friend.AvatarID,
				IsOnline: s.registry.IsOnline(friend.Username),
				Status:   string(store.StatusAccepted),
			})
		}
		return friends, nil
	})
}

func (s *friendsService) UpdateStatus(ctx context.Context, conn *session.Conn, req UpdateStatusRequest) protocol.Response[bool] {
	return executor.Run(s.ex, ctx, "UpdateFriendStatus", func(ctx context.Context) error {
		current, err := requireUser(conn)
		if err != nil {
			return err
		}
		newStatus, err := parseStatus(req.Status)
		if err != nil {
			return err
		}

		status, found, err := s.friendships.StatusEither(ctx, current.ID, req.UserID)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound("Relationship does not exist", protocol.CodeNotFound)
		}
		if !s.transitions.Allowed(status, newStatus) {
			return apperr.Conflict("Status change is not allowed", protocol.CodeConflict)
		}

		if err := s.friendships.UpdateStatus(ctx, current.ID, req.UserID, newStatus); err != nil {
			return err
		}

		other, err := s.users.FindByID(ctx, req.UserID)
		if err == nil && other != nil {
			if ch := s.registry.Channel(other.Username); ch != nil {
				go s.notifier.Push(ch, other.Username, func() protocol.Push {
					return protocol.Push{
						Type: protocol.PushFriendStatusChanged,
						Body: protocol.OK(protocol.Friend{
							ID:       current.ID,
							Username: current.Username,
							AvatarID: current.AvatarID,
							IsOnline: true,
							Status:   string(newStatus),
						}),
					}
				})
			}
		}
		return nil
	})
}

// notifyRequester pushes the outcome of a respond call to the original
// requester's channel, if they are connected.
func (s *friendsService) notifyRequester(ctx context.Context, current session.User, requesterID int64, accepted bool) {
	requester, err := s.users.FindByID(ctx, requesterID)
	if err != nil || requester == nil {
		return
	}
	ch := s.registry.Channel(requester.Username)
	if ch == nil {
		return
	}
	go s.notifier.Push(ch, requester.Username, func() protocol.Push {
		return protocol.Push{
			Type: protocol.PushFriendRequestResponse,
			Body: protocol.OK(protocol.FriendRequestResponse{
				ResponderID:       current.ID,
				ResponderUsername: current.Username,
				WasAccepted:       accepted,
			}),
		}
	})
}

func requireUser(conn *session.Conn) (session.User, error) {
	u, ok := conn.User()
	if !ok {
		return session.User{}, apperr.Auth("User is not authenticated", protocol.CodeSessionExpired)
	}
	return u, nil
}
