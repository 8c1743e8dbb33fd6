package repository

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User         UserRepository
	Plant        PlantRepository
	Comment      CommentRepository
	Reminder     ReminderRepository
	Notification NotificationRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Plant:        NewPlantRepository(db),
		Comment:      NewCommentRepository(db),
		Reminder:     NewReminderRepository(db),
		Notification: NewNotificationRepository(db),
	}
}

// expectAffected turns a write that matched no row into notFound.
func expectAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
