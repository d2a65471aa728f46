package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	ProjectID    *string
	ActivityType *ActivityType
	SinceTick    int64
	Limit        int
	Offset       int
}
