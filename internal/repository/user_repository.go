package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// UserRepository handles professor and student data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetProfessorByEmail retrieves a professor with their group memberships.
func (r *UserRepository) GetProfessorByEmail(ctx context.Context, email string) (*model.Professor, error) {
	p := &model.Professor{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM professors
		 WHERE email = $1`, email,
	).Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT group_scope FROM professor_groups WHERE professor_id = $1 ORDER BY group_scope`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		p.Groups = append(p.Groups, g)
	}
	return p, rows.Err()
}

// CreateProfessor inserts a professor and their group memberships.
func (r *UserRepository) CreateProfessor(ctx context.Context, p *model.Professor) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO professors (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		p.Name, p.Email, p.PasswordHash,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return err
	}

	for _, g := range p.Groups {
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO professor_groups (professor_id, group_scope)
			 VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, p.ID, g); err != nil {
			return err
		}
	}
	return nil
}

// InGroup reports whether the professor belongs to the group scope.
func (r *UserRepository) InGroup(ctx context.Context, professorEmail, groupScope string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM professor_groups pg
			JOIN professors p ON pg.professor_id = p.id
			WHERE p.email = $1 AND pg.group_scope = $2
		 )`, professorEmail, groupScope,
	).Scan(&exists)
	return exists, err
}

// GetStudentByEmail retrieves a student by email.
func (r *UserRepository) GetStudentByEmail(ctx context.Context, email string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM students
		 WHERE email = $1`, email,
	).Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateStudent inserts a new student.
func (r *UserRepository) CreateStudent(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.Name, s.Email, s.PasswordHash,
	).Scan(&s.ID, &s.CreatedAt)
}
