// Copyright 2024 The a2s Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"reflect"
	"testing"
)

func TestExpandNetworksBareHost(t *testing.T) {
	t.Parallel()
	got, err := expandNetworks([]string{"game.example.com"})
	if err != nil {
		t.Fatalf("expandNetworks() error = %v", err)
	}
	want := []string{"game.example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExpandNetworksCIDR(t *testing.T) {
	t.Parallel()
	got, err := expandNetworks([]string{"192.0.2.0/30"})
	if err != nil {
		t.Fatalf("expandNetworks() error = %v", err)
	}
	want := []string{"192.0.2.0", "192.0.2.1", "192.0.2.2", "192.0.2.3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExpandNetworksLastOctetRange(t *testing.T) {
	t.Parallel()
	got, err := expandNetworks([]string{"192.0.2.10-192.0.2.12"})
	if err != nil {
		t.Fatalf("expandNetworks() error = %v", err)
	}
	want := []string{"192.0.2.10", "192.0.2.11", "192.0.2.12"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExpandNetworksLastOctetRangeShortForm(t *testing.T) {
	t.Parallel()
	got, err := expandNetworks([]string{"192.0.2.250-255"})
	if err != nil {
		t.Fatalf("expandNetworks() error = %v", err)
	}
	want := []string{"192.0.2.250", "192.0.2.251", "192.0.2.252", "192.0.2.253", "192.0.2.254", "192.0.2.255"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExpandNetworksRangeReversed(t *testing.T) {
	t.Parallel()
	if _, err := expandNetworks([]string{"192.0.2.20-192.0.2.10"}); err == nil {
		t.Fatal("expandNetworks() error = nil, want error for reversed range")
	}
}

func TestExpandNetworksMixed(t *testing.T) {
	t.Parallel()
	got, err := expandNetworks([]string{"192.0.2.0/30", "10.0.0.1-10.0.0.2", "game.example.com"})
	if err != nil {
		t.Fatalf("expandNetworks() error = %v", err)
	}
	want := []string{
		"192.0.2.0", "192.0.2.1", "192.0.2.2", "192.0.2.3",
		"10.0.0.1", "10.0.0.2",
		"game.example.com",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
