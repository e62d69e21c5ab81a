package infra_postgres_swipe

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mavrushkin/swipematch/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type SwipeInfraUnitSuite struct {
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

func validSwipe(liked bool) model.Swipe {
	return model.Swipe{
		RoomID:  uuid.New(),
		UserID:  uuid.New(),
		MovieID: "42",
		Liked:   liked,
	}
}

// Every Add starts by locking the room row, serializing match derivation per
// room so concurrent likes cannot both miss each other's swipe.
func expectRoomLock(r *resources, roomID uuid.UUID) {
	r.mock.ExpectQuery("SELECT id FROM rooms (.+) FOR UPDATE").
		WithArgs(roomID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(roomID))
}

func (suite *SwipeInfraUnitSuite) TestAdd(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		swipe         func() model.Swipe
		setupMocks    func(r *resources, swipe model.Swipe)
		expectMatched bool
		expectError   bool
	}{
		{
			name:  "Should record a dislike without touching matches",
			swipe: func() model.Swipe { return validSwipe(false) },
			setupMocks: func(r *resources, swipe model.Swipe) {
				r.mock.ExpectBegin()
				expectRoomLock(r, swipe.RoomID)
				r.mock.ExpectExec("INSERT INTO swipes").
					WithArgs(swipe.RoomID, swipe.UserID, swipe.MovieID, swipe.Liked).
					WillReturnResult(sqlmock.NewResult(0, 1))
				r.mock.ExpectCommit()
			},
			expectMatched: false,
			expectError:   false,
		},
		{
			name:  "Should record a like with no reciprocal like yet",
			swipe: func() model.Swipe { return validSwipe(true) },
			setupMocks: func(r *resources, swipe model.Swipe) {
				r.mock.ExpectBegin()
				expectRoomLock(r, swipe.RoomID)
				r.mock.ExpectExec("INSERT INTO swipes").
					WithArgs(swipe.RoomID, swipe.UserID, swipe.MovieID, swipe.Liked).
					WillReturnResult(sqlmock.NewResult(0, 1))
				r.mock.ExpectExec("INSERT INTO matches").
					WithArgs(swipe.RoomID, swipe.MovieID).
					WillReturnResult(sqlmock.NewResult(0, 0))
				r.mock.ExpectCommit()
			},
			expectMatched: false,
			expectError:   false,
		},
		{
			name:  "Should report the match created by the second like",
			swipe: func() model.Swipe { return validSwipe(true) },
			setupMocks: func(r *resources, swipe model.Swipe) {
				r.mock.ExpectBegin()
				expectRoomLock(r, swipe.RoomID)
				r.mock.ExpectExec("INSERT INTO swipes").
					WithArgs(swipe.RoomID, swipe.UserID, swipe.MovieID, swipe.Liked).
					WillReturnResult(sqlmock.NewResult(0, 1))
				r.mock.ExpectExec("INSERT INTO matches").
					WithArgs(swipe.RoomID, swipe.MovieID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				r.mock.ExpectCommit()
			},
			expectMatched: true,
			expectError:   false,
		},
		{
			name:  "Should not re-report a match deduplicated by the unique index",
			swipe: func() model.Swipe { return validSwipe(true) },
			setupMocks: func(r *resources, swipe model.Swipe) {
				r.mock.ExpectBegin()
				expectRoomLock(r, swipe.RoomID)
				r.mock.ExpectExec("INSERT INTO swipes").
					WithArgs(swipe.RoomID, swipe.UserID, swipe.MovieID, swipe.Liked).
					WillReturnResult(sqlmock.NewResult(0, 1))
				r.mock.ExpectExec("INSERT INTO matches").
					WithArgs(swipe.RoomID, swipe.MovieID).
					WillReturnResult(sqlmock.NewResult(0, 0))
				r.mock.ExpectCommit()
			},
			expectMatched: false,
			expectError:   false,
		},
		{
			name:  "Should roll back when the room lock cannot be taken",
			swipe: func() model.Swipe { return validSwipe(true) },
			setupMocks: func(r *resources, swipe model.Swipe) {
				r.mock.ExpectBegin()
				r.mock.ExpectQuery("SELECT id FROM rooms (.+) FOR UPDATE").
					WithArgs(swipe.RoomID).
					WillReturnError(errors.New("lock error"))
				r.mock.ExpectRollback()
			},
			expectMatched: false,
			expectError:   true,
		},
		{
			name:  "Should roll back when the upsert fails",
			swipe: func() model.Swipe { return validSwipe(true) },
			setupMocks: func(r *resources, swipe model.Swipe) {
				r.mock.ExpectBegin()
				expectRoomLock(r, swipe.RoomID)
				r.mock.ExpectExec("INSERT INTO swipes").
					WithArgs(swipe.RoomID, swipe.UserID, swipe.MovieID, swipe.Liked).
					WillReturnError(errors.New("insert error"))
				r.mock.ExpectRollback()
			},
			expectMatched: false,
			expectError:   true,
		},
		{
			name:  "Should roll back when the match insert fails",
			swipe: func() model.Swipe { return validSwipe(true) },
			setupMocks: func(r *resources, swipe model.Swipe) {
				r.mock.ExpectBegin()
				expectRoomLock(r, swipe.RoomID)
				r.mock.ExpectExec("INSERT INTO swipes").
					WithArgs(swipe.RoomID, swipe.UserID, swipe.MovieID, swipe.Liked).
					WillReturnResult(sqlmock.NewResult(0, 1))
				r.mock.ExpectExec("INSERT INTO matches").
					WithArgs(swipe.RoomID, swipe.MovieID).
					WillReturnError(errors.New("match insert error"))
				r.mock.ExpectRollback()
			},
			expectMatched: false,
			expectError:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			swipe := tc.swipe()
			tc.setupMocks(r, swipe)

			matched, err := r.driver.Add(r.ctx, swipe)

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expectMatched, matched)
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *SwipeInfraUnitSuite) TestMatches(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		setupMocks  func(r *resources, roomID uuid.UUID)
		expected    []string
		expectError bool
	}{
		{
			name: "Should return matches ordered by movie id",
			setupMocks: func(r *resources, roomID uuid.UUID) {
				rows := sqlmock.NewRows([]string{"room_id", "movie_id"}).
					AddRow(roomID, "17").
					AddRow(roomID, "42")
				r.mock.ExpectQuery("SELECT (.+) FROM matches").
					WithArgs(roomID).
					WillReturnRows(rows)
			},
			expected:    []string{"17", "42"},
			expectError: false,
		},
		{
			name: "Should return an empty slice for a room without matches",
			setupMocks: func(r *resources, roomID uuid.UUID) {
				r.mock.ExpectQuery("SELECT (.+) FROM matches").
					WithArgs(roomID).
					WillReturnRows(sqlmock.NewRows([]string{"room_id", "movie_id"}))
			},
			expected:    []string{},
			expectError: false,
		},
		{
			name: "Should pass through query failures",
			setupMocks: func(r *resources, roomID uuid.UUID) {
				r.mock.ExpectQuery("SELECT (.+) FROM matches").
					WithArgs(roomID).
					WillReturnError(errors.New("query error"))
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			roomID := uuid.New()
			tc.setupMocks(r, roomID)

			matches, err := r.driver.Matches(r.ctx, roomID)

			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, matches, len(tc.expected))
				for i, movieID := range tc.expected {
					assert.Equal(t, movieID, matches[i].MovieID)
					assert.Equal(t, roomID, matches[i].RoomID)
				}
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(SwipeInfraUnitSuite))
}
