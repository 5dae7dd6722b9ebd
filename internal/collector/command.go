package collector

// OutputSeparator splits the batched command output into sections.
const OutputSeparator = "---"

// MetricsCommand is the single batched command executed over SSH to gather
// all resource metrics in one round trip. Sections, separated by "---":
//
//	0. top CPU summary line - instantaneous CPU usage
//	1. free - memory totals
//	2. df on / - root filesystem usage
//	3. /proc/loadavg - load averages
//
// Every command is read-only.
const MetricsCommand = `top -bn1 | grep -i '^%cpu' | head -1; echo "---"; free; echo "---"; df -P / | tail -1; echo "---"; cat /proc/loadavg`
