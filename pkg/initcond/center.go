package initcond

import "github.com/stellarforge/nbody-sim/pkg/body"

// Center applies the centering policy of spec §4.3: needToZero==0
// never centers; needToZero==1 centers only when iter==0; needToZero
// >= 2 centers unconditionally. Centering translates every particle so
// the system's center of mass sits at the origin and shifts every
// velocity so total linear momentum is zero, following configs.cpp's
// zero_centre_mass_and_linear_momentum.
func Center(particles []*body.Particle, needToZero, iter int) {
	if needToZero == 0 {
		return
	}
	if needToZero == 1 && iter > 0 {
		return
	}

	var totalMass, cx, cy, cz float64
	for _, p := range particles {
		m := p.Mass()
		pos := p.Pos()
		totalMass += m
		cx += m * pos.X
		cy += m * pos.Y
		cz += m * pos.Z
	}
	if totalMass == 0 {
		return
	}
	cx, cy, cz = cx/totalMass, cy/totalMass, cz/totalMass

	for _, p := range particles {
		pos := p.Pos()
		pos.X -= cx
		pos.Y -= cy
		pos.Z -= cz
		p.SetPos(pos)
	}

	var px, py, pz float64
	for _, p := range particles {
		m := p.Mass()
		vel := p.Vel()
		px += m * vel.X
		py += m * vel.Y
		pz += m * vel.Z
	}
	px, py, pz = px/totalMass, py/totalMass, pz/totalMass

	for _, p := range particles {
		vel := p.Vel()
		vel.X -= px
		vel.Y -= py
		vel.Z -= pz
		p.SetVel(vel)
	}
}
