package pose

import "testing"

func TestFrameGet(t *testing.T) {
	f := NewFrame(100,
		Landmark{ID: LeftKnee, X: 0.4, Y: 0.7, Visibility: 0.9},
		Landmark{ID: RightKnee, X: 0.6, Y: 0.7, Visibility: 0.3},
	)

	lm, ok := f.Get(LeftKnee)
	if !ok || lm.X != 0.4 {
		t.Errorf("Get(LeftKnee) = %+v, %v", lm, ok)
	}
	if _, ok := f.Get(Nose); ok {
		t.Error("Get(Nose) found a landmark that was never added")
	}
}

func TestFrameVisible(t *testing.T) {
	f := NewFrame(0,
		Landmark{ID: LeftHip, Visibility: 0.9},
		Landmark{ID: LeftKnee, Visibility: 0.4},
	)

	if !f.Visible(0.5, LeftHip) {
		t.Error("LeftHip at 0.9 visibility reported not visible")
	}
	if f.Visible(0.5, LeftHip, LeftKnee) {
		t.Error("set including a 0.4-visibility landmark reported visible")
	}
	if f.Visible(0.5, LeftHip, RightHip) {
		t.Error("set including a missing landmark reported visible")
	}
}

func TestLandmarkSide(t *testing.T) {
	cases := []struct {
		id   LandmarkID
		want Side
	}{
		{LeftShoulder, SideLeft},
		{RightFootIndex, SideRight},
		{Nose, SideCenter},
	}
	for _, tc := range cases {
		if got := tc.id.Side(); got != tc.want {
			t.Errorf("%s.Side() = %s, want %s", tc.id, got, tc.want)
		}
	}
}

func TestLandmarkValid(t *testing.T) {
	if !LeftWrist.Valid() {
		t.Error("LeftWrist reported invalid")
	}
	if LandmarkID("left_eyebrow").Valid() {
		t.Error("unknown landmark reported valid")
	}
}
