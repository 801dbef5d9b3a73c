package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	issued  []*domain.Session
	revoked []*domain.Session
}

func (s *stubSessions) Issue(_ context.Context, gameID, teamID, joinCode string) (*domain.Session, error) {
	session := &domain.Session{
		GameID:    gameID,
		TeamID:    teamID,
		JoinCode:  joinCode,
		Token:     "token-" + teamID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s.issued = append(s.issued, session)
	return session, nil
}

func (s *stubSessions) Parse(_ context.Context, token string) (*domain.Session, error) {
	for _, session := range s.issued {
		if session.Token == token {
			return session, nil
		}
	}
	return nil, errors.NewAuthenticationError("unknown session")
}

func (s *stubSessions) Revoke(_ context.Context, session *domain.Session) error {
	s.revoked = append(s.revoked, session)
	return nil
}

func newTeamFixture(t *testing.T) (*playFixture, *stubSessions, TeamService) {
	t.Helper()
	f := newPlayFixture(t)
	newWaitingGame(f)
	sessions := &stubSessions{}
	leaderboard := NewLeaderboardService(f.repos, NewCacheService(nil, nil, 0), f.pub, logger.NewNop())
	return f, sessions, NewTeamService(f.repos, sessions, leaderboard, f.pub, logger.NewNop())
}

func TestTeamService_JoinGame(t *testing.T) {
	f, _, svc := newTeamFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		code    string
		errType errors.ErrorType
	}{
		{name: "exact code", code: "ABCDE"},
		{name: "lowercase with spaces", code: "  abcde "},
		{name: "empty", code: "   ", errType: errors.ErrorTypeValidation},
		{name: "unknown", code: "NOPE1", errType: errors.ErrorTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := svc.JoinGame(ctx, tt.code)
			if tt.errType != "" {
				requireAppError(t, err, tt.errType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, f.game.ID, summary.ID)
			assert.Equal(t, domain.StatusWaiting, summary.Status)
		})
	}

	f.setStatus(domain.StatusFinished, 4)
	_, err := svc.JoinGame(ctx, "ABCDE")
	requireAppError(t, err, errors.ErrorTypeConflict)
}

func TestTeamService_RegisterTeamRoster(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.RegisterTeamRequest
		wantErr bool
		members []string
	}{
		{
			name:    "trimmed names",
			req:     domain.RegisterTeamRequest{Name: "  Hearts Club ", Members: []string{" Arisu ", "Usagi"}},
			members: []string{"Arisu", "Usagi"},
		},
		{
			name:    "six members",
			req:     domain.RegisterTeamRequest{Name: "Six", Members: []string{"a", "b", "c", "d", "e", "f"}},
			members: []string{"a", "b", "c", "d", "e", "f"},
		},
		{name: "missing name", req: domain.RegisterTeamRequest{Name: " ", Members: []string{"a", "b"}}, wantErr: true},
		{name: "name too long", req: domain.RegisterTeamRequest{Name: strings.Repeat("x", 101), Members: []string{"a", "b"}}, wantErr: true},
		{name: "one member", req: domain.RegisterTeamRequest{Name: "Solo", Members: []string{"a"}}, wantErr: true},
		{name: "seven members", req: domain.RegisterTeamRequest{Name: "Crowd", Members: []string{"a", "b", "c", "d", "e", "f", "g"}}, wantErr: true},
		{name: "blank member", req: domain.RegisterTeamRequest{Name: "Blank", Members: []string{"a", "  "}}, wantErr: true},
		{name: "duplicate member ignoring case", req: domain.RegisterTeamRequest{Name: "Twins", Members: []string{"Kuina", "kuina "}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, sessions, svc := newTeamFixture(t)
			req := tt.req

			resp, err := svc.RegisterTeam(context.Background(), f.game.ID, &req)
			if tt.wantErr {
				requireAppError(t, err, errors.ErrorTypeValidation)
				assert.Empty(t, sessions.issued)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.req.Name), resp.Team.Name)

			names := make([]string, 0, len(resp.Team.Members))
			for _, m := range resp.Team.Members {
				names = append(names, m.Name)
				assert.Equal(t, resp.Team.ID, m.TeamID)
			}
			assert.Equal(t, tt.members, names)

			require.NotNil(t, resp.Session)
			assert.Equal(t, f.game.ID, resp.Session.GameID)
			assert.Equal(t, resp.Team.ID, resp.Session.TeamID)
			assert.Equal(t, f.game.JoinCode, resp.Session.JoinCode)
			assert.Contains(t, f.pub.types(), domain.EventTeamRegistered)
		})
	}
}

func TestTeamService_RegisterTeamConflicts(t *testing.T) {
	f, _, svc := newTeamFixture(t)
	ctx := context.Background()
	req := func(name string) *domain.RegisterTeamRequest {
		return &domain.RegisterTeamRequest{Name: name, Members: []string{"a", "b"}}
	}

	// Foxtrot is already registered by the fixture
	_, err := svc.RegisterTeam(ctx, f.game.ID, req("FOXTROT"))
	requireAppError(t, err, errors.ErrorTypeConflict)

	_, err = svc.RegisterTeam(ctx, "missing", req("Golf"))
	requireAppError(t, err, errors.ErrorTypeNotFound)

	f.setStatus(domain.StatusBetweenRounds, 1)
	_, err = svc.RegisterTeam(ctx, f.game.ID, req("Hotel"))
	require.NoError(t, err, "late registration between rounds is allowed")

	f.setStatus(domain.StatusRound2, 2)
	_, err = svc.RegisterTeam(ctx, f.game.ID, req("India"))
	requireAppError(t, err, errors.ErrorTypeConflict)
}

func TestTeamService_SessionInfoAndLeave(t *testing.T) {
	f, sessions, svc := newTeamFixture(t)
	ctx := context.Background()

	info, err := svc.SessionInfo(ctx, f.session)
	require.NoError(t, err)
	assert.Equal(t, f.team.ID, info.Team.ID)
	assert.Len(t, info.Team.Members, 3)
	assert.Equal(t, f.game.JoinCode, info.Game.JoinCode)

	_, err = svc.SessionInfo(ctx, &domain.Session{GameID: f.game.ID, TeamID: "gone"})
	requireAppError(t, err, errors.ErrorTypeAuthentication)

	require.NoError(t, svc.LeaveGame(ctx, f.session))
	require.Len(t, sessions.revoked, 1)
	assert.Equal(t, f.team.ID, sessions.revoked[0].TeamID)
}
