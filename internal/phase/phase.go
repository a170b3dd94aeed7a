package phase

import (
	"time"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/model"
)

// Phase 计划阶段。手动状态覆盖或日期未配置时，阶段直接取状态字符串。
type Phase string

const (
	PhaseReady              Phase = "ready"               // 申请未开始
	PhaseApplicationOngoing Phase = "application_ongoing" // 申请进行中
	PhaseApplicationClosed  Phase = "application_closed"  // 申请已截止、募资未开始
	PhaseFundingOngoing     Phase = "funding_ongoing"     // 募资进行中
	PhasePublished          Phase = "published"           // 募资结束后的待定期
	PhaseProjectOngoing     Phase = "project_ongoing"     // 项目执行中
	PhaseProgramCompleted   Phase = "program_completed"   // 计划已完成
)

// PendingPeriod 募资结束后的待定期时长，期间禁止领取手续费
const PendingPeriod = 24 * time.Hour

// Result 阶段推导结果
type Result struct {
	Phase Phase

	// Overridden 为 true 表示阶段来自手动状态（取消/拒绝）或日期未配置，
	// 而非由时间窗口推导
	Overridden bool

	// 窗口重叠诊断信息，不参与阶段判定
	HasDateOverlap  bool
	OverlapDuration time.Duration
}

// Derive 根据计划配置的时间窗口与手动状态推导当前阶段。
// 纯函数：相同输入必得相同输出，无任何副作用。
//
// 优先级：手动取消/拒绝 > 日期未配置 > 申请未开始 > 募资窗口 >
// 申请窗口 > 窗口间隙 > 待定期 > 项目执行/完成。
// 申请窗口与募资窗口重叠时，募资窗口胜出。
func Derive(p *model.Program, now time.Time) Result {
	// 手动状态覆盖优先
	if p.Status == model.ProgramStatusCancelled || p.Status == model.ProgramStatusRejected {
		return Result{Phase: Phase(p.Status), Overridden: true}
	}

	// 任一日期缺失，阶段不可推导，回退到手动状态
	if p.ApplicationStartDate == nil || p.ApplicationEndDate == nil ||
		p.FundingStartDate == nil || p.FundingEndDate == nil {
		return Result{Phase: Phase(p.Status), Overridden: true}
	}

	appStart := *p.ApplicationStartDate
	appEnd := *p.ApplicationEndDate
	fundStart := *p.FundingStartDate
	fundEnd := *p.FundingEndDate

	r := Result{}
	if fundStart.Before(appEnd) {
		r.HasDateOverlap = true
		r.OverlapDuration = appEnd.Sub(fundStart)
	}

	switch {
	case now.Before(appStart):
		r.Phase = PhaseReady
	case withinWindow(now, fundStart, fundEnd):
		// 募资窗口优先于申请窗口
		r.Phase = PhaseFundingOngoing
	case withinWindow(now, appStart, appEnd):
		r.Phase = PhaseApplicationOngoing
	case now.After(appEnd) && now.Before(fundStart):
		r.Phase = PhaseApplicationClosed
	case now.After(fundEnd) && now.Before(fundEnd.Add(PendingPeriod)):
		// 待定期内仍视为已发布。待定期结束的那一刻起
		// 手续费即可领取，与 CanClaimFee 的边界保持一致
		r.Phase = PhasePublished
	case p.Status == model.ProgramStatusCompleted:
		r.Phase = PhaseProgramCompleted
	default:
		r.Phase = PhaseProjectOngoing
	}

	return r
}

// withinWindow now 是否落在 [start, end] 闭区间内
func withinWindow(now, start, end time.Time) bool {
	return !now.Before(start) && !now.After(end)
}

// CanSubmitApplication 是否允许提交申请：仅限资助计划的申请窗口内
func CanSubmitApplication(p *model.Program, now time.Time) bool {
	if p.Type != model.ProgramTypeFunding {
		return false
	}
	return Derive(p, now).Phase == PhaseApplicationOngoing
}

// CanInvest 是否允许投资：仅限资助计划的募资窗口内
func CanInvest(p *model.Program, now time.Time) bool {
	if p.Type != model.ProgramTypeFunding {
		return false
	}
	return Derive(p, now).Phase == PhaseFundingOngoing
}

// CanClaimFee 是否允许领取手续费：募资结束且待定期已过。
// 返回待定期结束时间，供调用方在拒绝时提示精确边界。
func CanClaimFee(p *model.Program, now time.Time) (bool, time.Time) {
	if p.Status == model.ProgramStatusCancelled || p.Status == model.ProgramStatusRejected {
		return false, time.Time{}
	}
	if p.FundingEndDate == nil {
		return false, time.Time{}
	}
	pendingEnd := p.FundingEndDate.Add(PendingPeriod)
	return now.After(pendingEnd) || now.Equal(pendingEnd), pendingEnd
}
