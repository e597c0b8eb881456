// Package store 提供 humanize.JobStore 的数据库实现，
// 用于多实例部署时共享可恢复任务的检查点。
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nerdneilsfield/go-humanizer-agent/pkg/humanize"
)

// PostgresJobStore 基于 PostgreSQL 的检查点存储。
// 检查点整体以 JSONB 保存，schema 演进不需要迁移任务状态字段。
type PostgresJobStore struct {
	pool *pgxpool.Pool
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS humanizer_job_states (
	job_id     TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgresJobStore 连接数据库并确保检查点表存在
func NewPostgresJobStore(ctx context.Context, dsn string) (*PostgresJobStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create job state table: %w", err)
	}

	return &PostgresJobStore{pool: pool}, nil
}

// Put 写入或覆盖检查点
func (s *PostgresJobStore) Put(ctx context.Context, state *humanize.ResumableJobState) error {
	if state == nil || state.JobID == "" {
		return fmt.Errorf("job state must carry a job id")
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal job state: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO humanizer_job_states (job_id, state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (job_id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		state.JobID, payload)
	if err != nil {
		return fmt.Errorf("store job state: %w", err)
	}

	return nil
}

// Get 读取检查点，不存在时返回 (nil, nil)
func (s *PostgresJobStore) Get(ctx context.Context, jobID string) (*humanize.ResumableJobState, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM humanizer_job_states WHERE job_id = $1`, jobID).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load job state: %w", err)
	}

	var state humanize.ResumableJobState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("unmarshal job state: %w", err)
	}

	return &state, nil
}

// Delete 删除检查点，不存在时为 no-op
func (s *PostgresJobStore) Delete(ctx context.Context, jobID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM humanizer_job_states WHERE job_id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("delete job state: %w", err)
	}
	return nil
}

// List 列出全部检查点的任务 ID
func (s *PostgresJobStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT job_id FROM humanizer_job_states ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("list job states: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan job id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job states: %w", err)
	}

	return ids, nil
}

// Close 关闭数据库连接池
func (s *PostgresJobStore) Close() {
	s.pool.Close()
}
