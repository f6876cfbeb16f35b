package platform

// AppName is reported to notification daemons that group by application.
const AppName = "memecanvas"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image the notification should
	// show if the platform supports it.
	IconPath string
	// TimeoutMillis is how long the notification stays up; zero uses 5s.
	TimeoutMillis int32
}

func (o Options) timeout() int32 {
	if o.TimeoutMillis <= 0 {
		return 5000
	}
	return o.TimeoutMillis
}
