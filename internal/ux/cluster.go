package ux

import (
	"fmt"

	"github.com/jorge-barreto/row/internal/cluster"
)

// RenderClusters prints every configured cluster, marking the active one.
func RenderClusters(clusters []cluster.Cluster, active string) {
	for _, c := range clusters {
		marker := "  "
		if c.Name == active {
			marker = fmt.Sprintf("%s→%s ", Yellow, Reset)
		}
		fmt.Printf("%s%s%-16s%s %s(%s)%s\n", marker, Bold, c.Name, Reset, Dim, c.Scheduler, Reset)
		for _, p := range c.Partitions {
			note := ""
			if p.PreventAutoSelect {
				note = fmt.Sprintf(" %s(manual only)%s", Dim, Reset)
			}
			fmt.Printf("    %-16s%s\n", p.Name, note)
		}
	}
}

// RenderLaunchers prints every launcher scope and its executables.
func RenderLaunchers(launchers map[string]map[string]cluster.Launcher) {
	for scope, byName := range launchers {
		fmt.Printf("%s%s%s\n", Bold, scope, Reset)
		for name, l := range byName {
			fmt.Printf("  %-16s %s\n", name, l.Executable)
		}
	}
}
