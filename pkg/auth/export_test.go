package auth

const LimiterPruneFloor = limiterPruneFloor

func (p *PasswordProvider) TrackedLimiters() int {
	p.limitersMu.Lock()
	defer p.limitersMu.Unlock()
	return len(p.limiters)
}
