package scheduler

import (
	"testing"

	"github.com/jorge-barreto/row/internal/cluster"
)

func scenarioPartitions() []cluster.Partition {
	return []cluster.Partition{
		{Name: "shared", MaximumCPUsPerJob: 127},
		{Name: "wholenode", RequireCPUsMultipleOf: 128},
		{Name: "gpu"},
	}
}

func TestDescribePartition_Scenario6(t *testing.T) {
	partitions := scenarioPartitions()

	cases := []struct {
		processes, gpus int
		want            string
		wantErr         bool
	}{
		{processes: 1, gpus: 0, want: "shared"},
		{processes: 128, gpus: 0, want: "wholenode"},
		{processes: 1, gpus: 1, want: "gpu"},
		{processes: 100, gpus: 0, want: "shared"},
		{processes: 129, gpus: 0, wantErr: true},
	}

	for _, c := range cases {
		req := ResourceRequest{Processes: c.processes, Threads: 1, GPUs: c.gpus}
		decision, err := DescribePartition("simulate", partitions, req, "")
		if c.wantErr {
			if err == nil {
				t.Fatalf("processes=%d gpus=%d: expected error, got partition %s", c.processes, c.gpus, decision.Partition.Name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("processes=%d gpus=%d: unexpected error: %v", c.processes, c.gpus, err)
		}
		if decision.Partition.Name != c.want {
			t.Fatalf("processes=%d gpus=%d: got %s, want %s", c.processes, c.gpus, decision.Partition.Name, c.want)
		}
	}
}

func TestDescribePartition_Forced(t *testing.T) {
	partitions := scenarioPartitions()
	decision, err := DescribePartition("simulate", partitions, ResourceRequest{Processes: 1}, "gpu")
	if err != nil {
		t.Fatal(err)
	}
	if decision.Partition.Name != "gpu" {
		t.Fatalf("got %s, want gpu", decision.Partition.Name)
	}
}

func TestDescribePartition_NodeCount(t *testing.T) {
	partitions := []cluster.Partition{{Name: "big", CPUsPerNode: 64}}
	decision, err := DescribePartition("simulate", partitions, ResourceRequest{Processes: 129, Threads: 1}, "")
	if err != nil {
		t.Fatal(err)
	}
	if decision.Nodes != 3 {
		t.Fatalf("nodes = %d, want 3", decision.Nodes)
	}
}
