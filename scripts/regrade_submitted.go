// 手动重新评分脚本
//
// 对象存储故障恢复后，停留在 SUBMITTED 且仍有未评分答案的作答需要重新跑一遍自动评分。
// 需要人工评分的题目会再次被跳过，不影响已评分的答案。
//
// 用法: go run scripts/regrade_submitted.go [-exam 12] [-dry-run]

package main

import (
	"context"
	"flag"
	"log"
	"music_exam_backend/internal/config"
	"music_exam_backend/internal/grading"
	"music_exam_backend/internal/model"
	"music_exam_backend/internal/repository"
	"music_exam_backend/internal/service"
	"music_exam_backend/pkg/database"
	"music_exam_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	examID := flag.Uint("exam", 0, "只处理该试卷，0 表示全部")
	dryRun := flag.Bool("dry-run", false, "只列出待处理的作答")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	attempts := repository.NewAttemptRepository(db)
	storage := service.NewStorageService(cfg)
	content := service.NewNotationContentService(storage, cfg, nil)
	orchestrator := grading.NewOrchestrator(repository.NewGradingStore(db), content, grading.SettingsFromConfig(cfg.Grading))

	submitted, total, err := attempts.ListByStatus(uint(*examID), model.AttemptSubmitted, 1, 0)
	if err != nil {
		log.Fatalf("查询作答失败: %v", err)
	}
	log.Printf("共 %d 份作答处于 SUBMITTED 状态", total)

	ctx := context.Background()
	var regraded, promoted int
	for _, a := range submitted {
		pending, err := attempts.CountUngraded(a.ID)
		if err != nil {
			logger.Log.Error("Count ungraded answers failed", zap.Uint("attemptId", a.ID), zap.Error(err))
			continue
		}
		if pending == 0 {
			continue
		}
		if *dryRun {
			log.Printf("attempt %d: %d 道题未评分", a.ID, pending)
			continue
		}

		res, err := orchestrator.GradeAttempt(ctx, a.ID)
		if err != nil {
			logger.Log.Error("Regrade failed", zap.Uint("attemptId", a.ID), zap.Error(err))
			continue
		}
		regraded++
		if res.Attempt != nil && res.Attempt.Status == model.AttemptGraded {
			promoted++
		}
		log.Printf("attempt %d: graded=%d skipped=%d failed=%d", a.ID, res.Graded, res.Skipped, res.Failed)
	}

	log.Printf("完成！重新评分 %d 份，其中 %d 份已全部评完", regraded, promoted)
}
