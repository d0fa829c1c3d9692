package service

import (
	"context"
	"log"
	"time"

	"acadstore_v1_202608/internal/model"
	"acadstore_v1_202608/internal/repository"
)

// ==================== AuditLogger 审计接口 ====================

// AuditLogger 审计日志接口（业务层依赖这个，方便测试替换）
type AuditLogger interface {
	// Log 记录一条表级访问日志
	Log(tableName, recordID, action, actor, detail string)

	// LogSecurityEvent 记录安全事件（限流拒绝、权限拒绝等）
	LogSecurityEvent(event, actor, detail string)
}

// ==================== AuditService 审计服务 ====================

// AuditService 审计服务
// 所有写入都是 fire-and-forget：失败只打日志，绝不阻塞或影响业务调用方
type AuditService struct {
	repo repository.AccessLogRepository
}

// NewAuditService 创建审计服务
func NewAuditService(repo repository.AccessLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Log(tableName, recordID, action, actor, detail string) {
	s.write(&model.AccessLog{
		TableName_: tableName,
		RecordID:   recordID,
		Action:     action,
		Actor:      actor,
		Detail:     detail,
	})
}

func (s *AuditService) LogSecurityEvent(event, actor, detail string) {
	s.write(&model.AccessLog{
		TableName_: "security_events",
		Action:     event,
		Actor:      actor,
		Detail:     detail,
	})
}

// write 异步写入，错误吞掉只留日志
func (s *AuditService) write(entry *model.AccessLog) {
	if s == nil || s.repo == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := s.repo.Create(ctx, entry); err != nil {
			log.Printf("[Audit] 审计日志写入失败 (table=%s action=%s): %v",
				entry.TableName_, entry.Action, err)
		}
	}()
}
