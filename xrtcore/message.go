package xrtcore

import "k8s.io/klog/v2"

// Severity of a runtime message, in syslog order: lower is more severe.
type Severity int

const (
	SeverityEmergency Severity = iota
	SeverityAlert
	SeverityCritical
	SeverityError
	SeverityWarning
	SeverityNotice
	SeverityInfo
	SeverityDebug
)

// Send routes a runtime message to the process log. Severities at notice
// and below are informational; debug messages only show up at klog -v=1.
func Send(severity Severity, tag, msg string) {
	switch severity {
	case SeverityEmergency, SeverityAlert, SeverityCritical, SeverityError:
		klog.Errorf("%s: %s", tag, msg)
	case SeverityWarning:
		klog.Warningf("%s: %s", tag, msg)
	case SeverityNotice, SeverityInfo:
		klog.Infof("%s: %s", tag, msg)
	default:
		klog.V(1).Infof("%s: %s", tag, msg)
	}
}
