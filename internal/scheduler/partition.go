package scheduler

import (
	"fmt"

	"github.com/jorge-barreto/row/internal/cluster"
	"github.com/jorge-barreto/row/internal/rowerr"
)

// PartitionDecision is the outcome of partition auto-selection: which
// partition was picked, how many nodes to request, and any extra flags
// (memory-per-cpu/gpu) to append to the submit command.
type PartitionDecision struct {
	Partition cluster.Partition
	Nodes     int
	Flags     []string
	Warnings  []string
}

// DescribePartition runs the SLURM partition-selection algorithm:
// iterate partitions in listed order, select the first whose constraints
// are all satisfied by the resource request's totals.
func DescribePartition(action string, partitions []cluster.Partition, req ResourceRequest, forcePartition string) (*PartitionDecision, error) {
	totalCPUs := req.Processes * max(req.Threads, 1)
	totalGPUs := req.GPUs

	if forcePartition != "" {
		for _, p := range partitions {
			if p.Name == forcePartition {
				return describe(p, totalCPUs, totalGPUs)
			}
		}
		return nil, &rowerr.PartitionSelectionError{Action: action, Reason: fmt.Sprintf("forced partition %q does not exist", forcePartition)}
	}

	var reasons []string
	for _, p := range partitions {
		if p.PreventAutoSelect {
			reasons = append(reasons, fmt.Sprintf("%s: prevent_auto_select", p.Name))
			continue
		}
		if p.MaximumCPUsPerJob > 0 && totalCPUs > p.MaximumCPUsPerJob {
			reasons = append(reasons, fmt.Sprintf("%s: total_cpus %d > maximum_cpus_per_job %d", p.Name, totalCPUs, p.MaximumCPUsPerJob))
			continue
		}
		if p.MaximumGPUsPerJob > 0 && totalGPUs > p.MaximumGPUsPerJob {
			reasons = append(reasons, fmt.Sprintf("%s: total_gpus %d > maximum_gpus_per_job %d", p.Name, totalGPUs, p.MaximumGPUsPerJob))
			continue
		}
		if p.MinimumGPUsPerJob > 0 && totalGPUs < p.MinimumGPUsPerJob {
			reasons = append(reasons, fmt.Sprintf("%s: total_gpus %d < minimum_gpus_per_job %d", p.Name, totalGPUs, p.MinimumGPUsPerJob))
			continue
		}
		if p.RequireCPUsMultipleOf > 0 && totalCPUs%p.RequireCPUsMultipleOf != 0 {
			reasons = append(reasons, fmt.Sprintf("%s: total_cpus %d not a multiple of %d", p.Name, totalCPUs, p.RequireCPUsMultipleOf))
			continue
		}
		if p.RequireGPUsMultipleOf > 0 && totalGPUs%p.RequireGPUsMultipleOf != 0 {
			reasons = append(reasons, fmt.Sprintf("%s: total_gpus %d not a multiple of %d", p.Name, totalGPUs, p.RequireGPUsMultipleOf))
			continue
		}
		return describe(p, totalCPUs, totalGPUs)
	}

	return nil, &rowerr.PartitionSelectionError{Action: action, Reason: joinReasons(reasons)}
}

func describe(p cluster.Partition, totalCPUs, totalGPUs int) (*PartitionDecision, error) {
	d := &PartitionDecision{Partition: p}

	if p.WarnCPUsNotMultipleOf > 0 && totalCPUs%p.WarnCPUsNotMultipleOf != 0 {
		d.Warnings = append(d.Warnings, fmt.Sprintf("total_cpus %d is not a multiple of %d on partition %s", totalCPUs, p.WarnCPUsNotMultipleOf, p.Name))
	}
	if p.WarnGPUsNotMultipleOf > 0 && totalGPUs%p.WarnGPUsNotMultipleOf != 0 {
		d.Warnings = append(d.Warnings, fmt.Sprintf("total_gpus %d is not a multiple of %d on partition %s", totalGPUs, p.WarnGPUsNotMultipleOf, p.Name))
	}

	nodes := 1
	if p.CPUsPerNode > 0 {
		nodes = maxInt(nodes, ceilDiv(totalCPUs, p.CPUsPerNode))
	}
	if p.GPUsPerNode > 0 {
		nodes = maxInt(nodes, ceilDiv(totalGPUs, p.GPUsPerNode))
	}
	d.Nodes = nodes

	if p.MemoryPerCPU != "" {
		d.Flags = append(d.Flags, "--mem-per-cpu="+p.MemoryPerCPU)
	}
	if p.MemoryPerGPU != "" {
		d.Flags = append(d.Flags, "--mem-per-gpu="+p.MemoryPerGPU)
	}

	return d, nil
}

func ceilDiv(a, b int) int {
	if b <= 0 || a <= 0 {
		return 1
	}
	return (a + b - 1) / b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func joinReasons(reasons []string) string {
	if len(reasons) == 0 {
		return "no partitions configured"
	}
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += "; " + r
	}
	return out
}
