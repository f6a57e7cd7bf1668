// Package budget implements named spending budgets with periodic refills and
// per-block reward accrual for registered recipients.
//
// A recipient's reward accrues lazily: the stored record is a checkpoint
// (unpaid reward at last_payment_block) and the current reward is
// unpaid + reward_per_block * (now - last_payment_block). Every mutation of
// a recipient rewrites the checkpoint first, so a rate change never loses or
// double counts reward.
//
// Scheduled maintenance runs once per block from OnFinalize: periodic refills
// first, then auto payments. Auto payment is best effort and stops at the
// first recipient it cannot pay because the budget ran dry.
package budget
