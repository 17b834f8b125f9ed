package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yeisme/objectvault/pkg/middleware"
	"github.com/yeisme/objectvault/pkg/scheduler"
)

// requireScheduler 取出注入的调度器，未启用时返回 503.
func requireScheduler(c *gin.Context) *scheduler.Scheduler {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not enabled"})
	}

	return sched
}

// SchedulerJobs 返回所有调度任务及其最近执行状态.
//
//	@Summary	调度任务列表
//	@Tags		调度器
//	@Produce	json
//	@Success	200	{object}	map[string]any	"任务列表"
//	@Router		/api/v1/scheduler/jobs [get]
func SchedulerJobs(c *gin.Context) {
	sched := requireScheduler(c)
	if sched == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos()})
}

// SchedulerStopJobs 停止所有任务.
//
//	@Summary	停止全部调度任务
//	@Tags		调度器
//	@Produce	json
//	@Success	200	{object}	map[string]string	"已停止"
//	@Router		/api/v1/scheduler/jobs/stop [post]
func SchedulerStopJobs(c *gin.Context) {
	sched := requireScheduler(c)
	if sched == nil {
		return
	}

	if err := sched.StopJobs(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "jobs stopped"})
}

// SchedulerRemoveJob 根据 id 删除任务.
//
//	@Summary	删除调度任务
//	@Tags		调度器
//	@Produce	json
//	@Param		id	path		string				true	"任务ID(UUID)"
//	@Success	200	{object}	map[string]string	"已删除"
//	@Failure	400	{object}	map[string]string	"任务ID非法"
//	@Router		/api/v1/scheduler/jobs/{id} [delete]
func SchedulerRemoveJob(c *gin.Context) {
	sched := requireScheduler(c)
	if sched == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	if err := sched.RemoveJob(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job removed"})
}

// SchedulerQueueWaiting 返回队列中等待执行的任务数.
//
//	@Summary	等待中的任务数
//	@Tags		调度器
//	@Produce	json
//	@Success	200	{object}	map[string]int	"等待数量"
//	@Router		/api/v1/scheduler/queue/waiting [get]
func SchedulerQueueWaiting(c *gin.Context) {
	sched := requireScheduler(c)
	if sched == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"waiting": sched.JobsWaitingInQueue()})
}
