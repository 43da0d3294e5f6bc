package shared

// BaseAggregateRoot adds a version counter and a pending-event buffer
// to BaseEntity. Mutating methods on an aggregate bump the version and
// queue events; the application layer drains the buffer after a
// successful save and hands the events to the publisher.
type BaseAggregateRoot struct {
	BaseEntity
	Version       int           `gorm:"not null;default:1"`
	pendingEvents []DomainEvent `gorm:"-"`
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pendingEvents = append(a.pendingEvents, event)
}

// GetDomainEvents returns the events queued since the last clear, in
// the order they were added.
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pendingEvents
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pendingEvents = nil
}
