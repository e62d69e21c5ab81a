package infra_postgres_room

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mavrushkin/swipematch/internal/model"
	usecase_room "github.com/mavrushkin/swipematch/internal/usecase/room"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type RoomInfraUnitSuite struct {
	suite.Suite
}

type resources struct {
	db     *sqlx.DB
	mock   sqlmock.Sqlmock
	driver *Driver
	ctx    context.Context
}

func initResources(t provider.T) *resources {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	driver := New(sqlxDB)

	return &resources{
		db:     sqlxDB,
		mock:   mock,
		driver: driver,
		ctx:    context.Background(),
	}
}

func validRoom() model.Room {
	return model.Room{
		ID:         uuid.New(),
		PIN:        "4821",
		HostUserID: uuid.New(),
		MovieList: []model.Movie{
			{ID: "42", Title: "Inception", PosterURL: "https://example.com/42.jpg"},
		},
		Status: model.StatusWaiting,
	}
}

func roomRows(room model.Room, player2 uuid.NullUUID) *sqlmock.Rows {
	movieList, _ := json.Marshal(room.MovieList)
	return sqlmock.NewRows([]string{"id", "pin", "host_user_id", "player2_user_id", "movie_list", "status"}).
		AddRow(room.ID, room.PIN, room.HostUserID, player2, movieList, room.Status)
}

func (suite *RoomInfraUnitSuite) TestCreate(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name            string
		setupMocks      func(r *resources, room model.Room)
		expectError     bool
		expectedError   error
		unexpectedError error
	}{
		{
			name: "Should insert room successfully",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectExec("INSERT INTO rooms").
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
			expectError: false,
		},
		{
			name: "Should map a PIN collision to ErrPINConflict",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectExec("INSERT INTO rooms").
					WillReturnError(&pq.Error{Code: "23505", Constraint: "rooms_pin_key"})
			},
			expectError:   true,
			expectedError: usecase_room.ErrPINConflict,
		},
		{
			name: "Should not treat other unique violations as a PIN collision",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectExec("INSERT INTO rooms").
					WillReturnError(&pq.Error{Code: "23505", Constraint: "rooms_pkey"})
			},
			expectError:     true,
			unexpectedError: usecase_room.ErrPINConflict,
		},
		{
			name: "Should pass through other insert failures",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectExec("INSERT INTO rooms").
					WillReturnError(errors.New("insert error"))
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			room := validRoom()
			tc.setupMocks(r, room)

			err := r.driver.Create(r.ctx, room)

			if tc.expectError {
				assert.Error(t, err)
				if tc.expectedError != nil {
					assert.ErrorIs(t, err, tc.expectedError)
				}
				if tc.unexpectedError != nil {
					assert.NotErrorIs(t, err, tc.unexpectedError)
				}
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *RoomInfraUnitSuite) TestFindJoinable(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		setupMocks    func(r *resources, room model.Room)
		expectError   bool
		expectedError error
	}{
		{
			name: "Should find a waiting room by PIN",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectQuery("SELECT (.+) FROM rooms").
					WithArgs(room.PIN, model.StatusWaiting).
					WillReturnRows(roomRows(room, uuid.NullUUID{}))
			},
			expectError: false,
		},
		{
			name: "Should report not found for an unknown or started room",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectQuery("SELECT (.+) FROM rooms").
					WithArgs(room.PIN, model.StatusWaiting).
					WillReturnRows(sqlmock.NewRows([]string{"id", "pin", "host_user_id", "player2_user_id", "movie_list", "status"}))
			},
			expectError:   true,
			expectedError: usecase_room.ErrResourceNotFound,
		},
		{
			name: "Should pass through query failures",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectQuery("SELECT (.+) FROM rooms").
					WithArgs(room.PIN, model.StatusWaiting).
					WillReturnError(errors.New("query error"))
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			room := validRoom()
			tc.setupMocks(r, room)

			found, err := r.driver.FindJoinable(r.ctx, room.PIN)

			if tc.expectError {
				assert.Error(t, err)
				if tc.expectedError != nil {
					assert.ErrorIs(t, err, tc.expectedError)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, room.ID, found.ID)
				assert.Equal(t, room.PIN, found.PIN)
				assert.Equal(t, room.MovieList, found.MovieList)
				assert.Nil(t, found.Player2UserID)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *RoomInfraUnitSuite) TestClaimSeat(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		setupMocks    func(r *resources, room model.Room, userID uuid.UUID)
		expectError   bool
		expectedError error
	}{
		{
			name: "Should claim the free seat and return the updated room",
			setupMocks: func(r *resources, room model.Room, userID uuid.UUID) {
				updated := room
				updated.Status = model.StatusReady
				r.mock.ExpectQuery("UPDATE rooms").
					WithArgs(room.ID, userID, model.StatusReady, model.StatusWaiting).
					WillReturnRows(roomRows(updated, uuid.NullUUID{UUID: userID, Valid: true}))
			},
			expectError: false,
		},
		{
			name: "Should report not found when the seat is already taken",
			setupMocks: func(r *resources, room model.Room, userID uuid.UUID) {
				r.mock.ExpectQuery("UPDATE rooms").
					WithArgs(room.ID, userID, model.StatusReady, model.StatusWaiting).
					WillReturnRows(sqlmock.NewRows([]string{"id", "pin", "host_user_id", "player2_user_id", "movie_list", "status"}))
			},
			expectError:   true,
			expectedError: usecase_room.ErrResourceNotFound,
		},
		{
			name: "Should pass through update failures",
			setupMocks: func(r *resources, room model.Room, userID uuid.UUID) {
				r.mock.ExpectQuery("UPDATE rooms").
					WithArgs(room.ID, userID, model.StatusReady, model.StatusWaiting).
					WillReturnError(errors.New("update error"))
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			room := validRoom()
			userID := uuid.New()
			tc.setupMocks(r, room, userID)

			claimed, err := r.driver.ClaimSeat(r.ctx, room.ID, userID)

			if tc.expectError {
				assert.Error(t, err)
				if tc.expectedError != nil {
					assert.ErrorIs(t, err, tc.expectedError)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, model.StatusReady, claimed.Status)
				assert.NotNil(t, claimed.Player2UserID)
				assert.Equal(t, userID, *claimed.Player2UserID)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *RoomInfraUnitSuite) TestByID(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		setupMocks    func(r *resources, room model.Room)
		expectError   bool
		expectedError error
	}{
		{
			name: "Should load a room by id",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectQuery("SELECT (.+) FROM rooms").
					WithArgs(room.ID).
					WillReturnRows(roomRows(room, uuid.NullUUID{}))
			},
			expectError: false,
		},
		{
			name: "Should report not found for a missing id",
			setupMocks: func(r *resources, room model.Room) {
				r.mock.ExpectQuery("SELECT (.+) FROM rooms").
					WithArgs(room.ID).
					WillReturnRows(sqlmock.NewRows([]string{"id", "pin", "host_user_id", "player2_user_id", "movie_list", "status"}))
			},
			expectError:   true,
			expectedError: usecase_room.ErrResourceNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			room := validRoom()
			tc.setupMocks(r, room)

			found, err := r.driver.ByID(r.ctx, room.ID)

			if tc.expectError {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, room.ID, found.ID)
				assert.Equal(t, room.HostUserID, found.HostUserID)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(RoomInfraUnitSuite))
}
