package worker

import (
	"errors"
	"fmt"

	"github.com/Amirjjf/Chat-application-Distributed-System/internal/store"
	"github.com/rs/zerolog/log"
)

var (
	ErrPersistFailed = errors.New("persist failed")
	ErrWorkerPanic   = errors.New("worker panic")
)

// Appender 是工作单元写入消息所需的最小存储接口。
type Appender interface {
	Append(senderID, senderLoginID, senderName, text string) (*store.MessageDTO, error)
}

// Task 是一次性的持久化任务，不重用也不自动重试。
type Task struct {
	SenderID      string
	SenderLoginID string
	SenderName    string
	Text          string
}

// Result 要么携带已持久化的消息，要么携带类型化失败。
type Result struct {
	Message *store.MessageDTO
	Err     error
}

// Pool 把每个任务放进独立的 goroutine 执行，崩溃被就地回收，
// 不会波及连接处理路径或其他任务。sem 限制同时写入存储的任务数。
type Pool struct {
	appender Appender
	sem      chan struct{}
}

func NewPool(appender Appender, maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	return &Pool{appender: appender, sem: make(chan struct{}, maxWorkers)}
}

// Submit 提交任务并立刻返回结果通道。通道带缓冲，
// 即使提交方在结果到达前断开，工作单元也能正常结束。
func (p *Pool) Submit(task Task) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		p.sem <- struct{}{}
		defer func() { <-p.sem }()
		out <- p.run(task)
	}()
	return out
}

func (p *Pool) run(task Task) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("sender_id", task.SenderID).Msg("persist worker panic")
			res = Result{Err: fmt.Errorf("%w: %v", ErrWorkerPanic, r)}
		}
	}()

	msg, err := p.appender.Append(task.SenderID, task.SenderLoginID, task.SenderName, task.Text)
	if err != nil {
		log.Error().Err(err).Str("sender_id", task.SenderID).Msg("persist message")
		return Result{Err: fmt.Errorf("%w: %v", ErrPersistFailed, err)}
	}
	return Result{Message: msg}
}
