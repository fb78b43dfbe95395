package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

func TestTicketHistoryRepository(t *testing.T) {
	t.Run("Should insert an entry and read back its id", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := repository.NewTicketHistoryRepository(mockPool)
		now := time.Now().UTC()
		entry := domain.NewTicketHistory(7, domain.Actor{ID: 2, Role: domain.RoleTechnician}, domain.TicketChange{
			ChangeType: domain.ChangeTypeStatus,
			OldValue:   domain.TicketStatusOpen,
			NewValue:   domain.TicketStatusClosed,
		}, now)

		mockPool.ExpectQuery("INSERT INTO ticket_history (.+) RETURNING id").
			WithArgs(int64(7), int64(2), "STATUS_CHANGE", "open", "closed", now).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

		require.NoError(t, repo.Create(context.Background(), entry))
		assert.Equal(t, int64(11), entry.ID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should list entries oldest first", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := repository.NewTicketHistoryRepository(mockPool)
		now := time.Now().UTC()

		mockPool.ExpectQuery(`SELECT (.+) FROM ticket_history WHERE ticket_id = \$1 ORDER BY created_at ASC, id ASC`).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "ticket_id", "changed_by_id", "change_type", "old_value", "new_value", "created_at"}).
				AddRow(int64(1), int64(7), int64(2), "ASSIGNEE_CHANGE", "", "2", now))

		entries, err := repo.ListByTicket(context.Background(), 7)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ChangeTypeAssignee, entries[0].ChangeType)
		assert.Equal(t, "", entries[0].OldValue)
		assert.Equal(t, "2", entries[0].NewValue)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
